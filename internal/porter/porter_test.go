package porter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"deepcut/internal/paging"
	"deepcut/internal/playlist"
)

type fakeEditor struct {
	mu sync.Mutex

	userID    string
	playlists map[string]*playlist.Playlist
	items     map[string][]string
	calls     []string
	addTimes  []time.Time
	addDone   []time.Time
	addDelay  time.Duration
	addSizes  []int
	addErr    error
	unfollow  error
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{
		userID:    "me",
		playlists: make(map[string]*playlist.Playlist),
		items:     make(map[string][]string),
	}
}

func (f *fakeEditor) put(id, name string, uris ...string) {
	f.playlists[id] = &playlist.Playlist{ID: id, Name: name, TrackCount: len(uris)}
	f.items[id] = uris
}

func (f *fakeEditor) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeEditor) CurrentUserID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("me")
	return f.userID, nil
}

func (f *fakeEditor) Playlist(ctx context.Context, id string) (playlist.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")
	pl, ok := f.playlists[id]
	if !ok {
		return playlist.Playlist{}, &playlist.NotFoundError{Kind: "playlist", ID: id}
	}
	out := *pl
	out.TrackCount = len(f.items[id])
	return out, nil
}

func (f *fakeEditor) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (playlist.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	id := fmt.Sprintf("pl%d", len(f.playlists)+1)
	f.playlists[id] = &playlist.Playlist{ID: id, Name: name, Description: description, Public: public, Owner: userID}
	return *f.playlists[id], nil
}

func (f *fakeEditor) PlaylistTrackURIs(ctx context.Context, id string, cursor string) (paging.Page[string], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("items")
	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	items := f.items[id]
	end := min(start+BatchSize, len(items))
	page := paging.Page[string]{Items: items[start:end]}
	if end < len(items) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeEditor) AddTracks(ctx context.Context, id string, uris []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add")
	if f.addErr != nil {
		return f.addErr
	}
	f.addTimes = append(f.addTimes, time.Now())
	f.addSizes = append(f.addSizes, len(uris))
	f.items[id] = append(f.items[id], uris...)
	time.Sleep(f.addDelay)
	f.addDone = append(f.addDone, time.Now())
	return nil
}

func (f *fakeEditor) RemoveTracks(ctx context.Context, id string, uris []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove")
	if len(uris) > BatchSize {
		return errors.New("too many uris")
	}
	drop := make(map[string]bool)
	for _, u := range uris {
		drop[u] = true
	}
	var kept []string
	for _, u := range f.items[id] {
		if !drop[u] {
			kept = append(kept, u)
		}
	}
	f.items[id] = kept
	return nil
}

func (f *fakeEditor) Unfollow(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("unfollow")
	return f.unfollow
}

func uris(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("spotify:track:t%04d", i)
	}
	return out
}

func TestPrepareNewRequiresName(t *testing.T) {
	ed := newFakeEditor()
	p := NewPorter(ed, nil, nil, 0)

	_, err := p.Prepare(context.Background(), Target{Mode: playlist.ModeNew, Name: "   "})
	if playlist.Classify(err) != playlist.CategoryConfig {
		t.Fatalf("Expected config error, got %v", err)
	}
	if len(ed.calls) != 0 {
		t.Errorf("Expected no API calls, got %v", ed.calls)
	}
}

func TestPrepareNewCreates(t *testing.T) {
	ed := newFakeEditor()
	p := NewPorter(ed, nil, nil, 0)

	pl, err := p.Prepare(context.Background(), Target{
		Mode:        playlist.ModeNew,
		Name:        "Deep Cuts",
		Public:      true,
		Description: "Artists: A, B",
	})
	if err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if pl.Name != "Deep Cuts" || !pl.Public || pl.Owner != "me" || pl.Description != "Artists: A, B" {
		t.Errorf("Unexpected playlist: %+v", pl)
	}
}

func TestPrepareOverwriteClears(t *testing.T) {
	ed := newFakeEditor()
	existing := append(uris(230), "spotify:track:t0001", "spotify:track:t0002")
	ed.put("old", "Old Mix", existing...)
	p := NewPorter(ed, nil, nil, 0)

	pl, err := p.Prepare(context.Background(), Target{
		Mode:       playlist.ModeOverwrite,
		ExistingID: "https://open.spotify.com/playlist/old?si=x",
	})
	if err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if pl.ID != "old" {
		t.Errorf("Expected to reuse playlist 'old', got %s", pl.ID)
	}

	check, _ := ed.Playlist(context.Background(), "old")
	if check.TrackCount != 0 {
		t.Errorf("Expected 0 tracks after overwrite clearing, got %d", check.TrackCount)
	}

	removes := 0
	for _, c := range ed.calls {
		if c == "remove" {
			removes++
		}
	}
	if removes != 3 {
		t.Errorf("Expected 3 remove batches for 230 unique tracks, got %d", removes)
	}
}

func TestPrepareAppendKeepsTracks(t *testing.T) {
	ed := newFakeEditor()
	ed.put("keep", "Keep", uris(5)...)
	p := NewPorter(ed, nil, nil, 0)

	pl, err := p.Prepare(context.Background(), Target{Mode: playlist.ModeAppend, ExistingID: "spotify:playlist:keep"})
	if err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if pl.TrackCount != 5 {
		t.Errorf("Expected append to keep 5 tracks, got %d", pl.TrackCount)
	}
}

func TestPrepareAppendNotFound(t *testing.T) {
	ed := newFakeEditor()
	p := NewPorter(ed, nil, nil, 0)

	_, err := p.Prepare(context.Background(), Target{Mode: playlist.ModeAppend, ExistingID: "missing"})
	if !playlist.IsNotFound(err) {
		t.Fatalf("Expected not found error, got %v", err)
	}
}

func TestPrepareInvalidMode(t *testing.T) {
	_, err := NewPorter(newFakeEditor(), nil, nil, 0).Prepare(context.Background(), Target{Mode: "MERGE", Name: "x"})
	if playlist.Classify(err) != playlist.CategoryConfig {
		t.Errorf("Expected config error for unknown mode, got %v", err)
	}
}

func TestAddTracksBatches(t *testing.T) {
	ed := newFakeEditor()
	ed.put("pl", "Target")
	pause := 20 * time.Millisecond
	p := NewPorter(ed, nil, nil, pause)

	var progress []int
	added, err := p.AddTracks(context.Background(), "pl", uris(250), func(added, total int) {
		if total != 250 {
			t.Errorf("Expected total 250, got %d", total)
		}
		progress = append(progress, added)
	})
	if err != nil {
		t.Fatalf("AddTracks() failed: %v", err)
	}
	if added != 250 {
		t.Errorf("Expected 250 added, got %d", added)
	}

	if len(ed.addSizes) != 3 || ed.addSizes[0] != 100 || ed.addSizes[1] != 100 || ed.addSizes[2] != 50 {
		t.Errorf("Expected batches 100, 100, 50, got %v", ed.addSizes)
	}
	if len(progress) != 3 || progress[0] != 100 || progress[1] != 200 || progress[2] != 250 {
		t.Errorf("Expected progress 100, 200, 250, got %v", progress)
	}
	for i := 1; i < len(ed.addTimes); i++ {
		if gap := ed.addTimes[i].Sub(ed.addDone[i-1]); gap < pause {
			t.Errorf("Expected a pause between batches, got %v", gap)
		}
	}
}

func TestAddTracksPausesAfterSlowBatch(t *testing.T) {
	ed := newFakeEditor()
	ed.put("pl", "Target")
	ed.addDelay = 30 * time.Millisecond
	pause := 20 * time.Millisecond

	added, err := NewPorter(ed, nil, nil, pause).AddTracks(context.Background(), "pl", uris(201), nil)
	if err != nil {
		t.Fatalf("AddTracks() failed: %v", err)
	}
	if added != 201 || len(ed.addTimes) != 3 {
		t.Fatalf("Expected 201 tracks in 3 batches, got %d in %d", added, len(ed.addTimes))
	}
	for i := 1; i < len(ed.addTimes); i++ {
		if gap := ed.addTimes[i].Sub(ed.addDone[i-1]); gap < pause {
			t.Errorf("Expected at least %v after batch %d finished, got %v", pause, i, gap)
		}
	}
}

func TestAddTracksCancelledDuringPause(t *testing.T) {
	ed := newFakeEditor()
	ed.put("pl", "Target")
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPorter(ed, nil, nil, time.Hour)
	added, err := p.AddTracks(ctx, "pl", uris(150), func(added, total int) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if added != 100 {
		t.Errorf("Expected the first batch to be added, got %d", added)
	}
}

func TestAddTracksStopsOnError(t *testing.T) {
	ed := newFakeEditor()
	ed.addErr = &playlist.APIError{Status: 429, Message: "rate limited"}
	p := NewPorter(ed, nil, nil, 0)

	added, err := p.AddTracks(context.Background(), "pl", uris(150), nil)
	if playlist.Classify(err) != playlist.CategoryAPI {
		t.Errorf("Expected API error, got %v", err)
	}
	if added != 0 {
		t.Errorf("Expected 0 added, got %d", added)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ed := newFakeEditor()
	ed.unfollow = &playlist.NotFoundError{Kind: "playlist", ID: "gone"}
	p := NewPorter(ed, nil, nil, 0)

	if err := p.Delete(context.Background(), "gone"); err != nil {
		t.Errorf("Expected deleting a missing playlist to succeed, got %v", err)
	}

	ed.unfollow = &playlist.APIError{Status: 403, Message: "forbidden"}
	if err := p.Delete(context.Background(), "other"); playlist.Classify(err) != playlist.CategoryAPI {
		t.Errorf("Expected API error, got %v", err)
	}

	if err := p.Delete(context.Background(), ""); playlist.Classify(err) != playlist.CategoryConfig {
		t.Errorf("Expected config error for empty ID, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	ed := newFakeEditor()
	ed.put("abc", "Found", uris(3)...)
	p := NewPorter(ed, nil, nil, 0)

	pl, err := p.Check(context.Background(), "spotify:playlist:abc")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if pl.TrackCount != 3 {
		t.Errorf("Expected 3 tracks, got %d", pl.TrackCount)
	}
	if _, err := p.Check(context.Background(), "nope"); !playlist.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}
