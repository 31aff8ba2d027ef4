package porter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deepcut/internal/events"
	"deepcut/internal/paging"
	"deepcut/internal/playlist"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// BatchSize is the most tracks the service accepts per add, remove or list call.
	BatchSize = 100
	// DefaultBatchPause keeps bulk adds under the service's implicit rate limit.
	DefaultBatchPause = 500 * time.Millisecond
)

// Editor is the playlist capability of the streaming service.
type Editor interface {
	CurrentUserID(ctx context.Context) (string, error)
	// Playlist returns a *playlist.NotFoundError when the ID does not resolve.
	Playlist(ctx context.Context, playlistID string) (playlist.Playlist, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (playlist.Playlist, error)
	PlaylistTrackURIs(ctx context.Context, playlistID string, cursor string) (paging.Page[string], error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
	RemoveTracks(ctx context.Context, playlistID string, uris []string) error
	Unfollow(ctx context.Context, playlistID string) error
}

// Target says which playlist receives the tracks.
type Target struct {
	Mode        playlist.Mode
	Name        string
	ExistingID  string
	Public      bool
	Description string
}

// Porter creates, clears or reuses playlists and fills them in batches.
type Porter struct {
	editor Editor
	logger *zap.Logger
	sink   events.Sink
	pause  time.Duration
}

// NewPorter creates a new playlist manager using the specified editor
func NewPorter(editor Editor, logger *zap.Logger, sink events.Sink, pause time.Duration) *Porter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Porter{
		editor: editor,
		logger: logger,
		sink:   sink,
		pause:  pause,
	}
}

// Validate checks the target without calling the service.
func Validate(target Target) error {
	switch target.Mode {
	case playlist.ModeNew:
		if strings.TrimSpace(target.Name) == "" {
			return &playlist.ConfigError{Message: "a name is required to create a new playlist"}
		}
	case playlist.ModeOverwrite, playlist.ModeAppend:
		if playlist.ParseID(target.ExistingID) == "" {
			return &playlist.ConfigError{Message: "an existing playlist ID or URL is required to overwrite or append"}
		}
	default:
		return &playlist.ConfigError{Message: fmt.Sprintf("invalid playlist mode %q", target.Mode)}
	}
	return nil
}

// Prepare returns the playlist that new tracks go into. NEW creates one,
// OVERWRITE empties an existing one and APPEND reuses it unchanged.
func (p *Porter) Prepare(ctx context.Context, target Target) (playlist.Playlist, error) {
	if err := Validate(target); err != nil {
		return playlist.Playlist{}, err
	}

	if target.Mode == playlist.ModeNew {
		return p.create(ctx, target)
	}

	id := playlist.ParseID(target.ExistingID)
	pl, err := p.editor.Playlist(ctx, id)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("resolving playlist %s: %w", id, err)
	}

	if target.Mode == playlist.ModeOverwrite {
		p.sink.Logf(events.SeverityWarn, "Clearing existing playlist '%s' before overwrite...", pl.Name)
		if err := p.clear(ctx, pl); err != nil {
			return playlist.Playlist{}, err
		}
		pl.TrackCount = 0
	}

	p.sink.Logf(events.SeveritySuccess, "Using playlist: %s (%s)", pl.Name, pl.ID)
	return pl, nil
}

func (p *Porter) create(ctx context.Context, target Target) (playlist.Playlist, error) {
	userID, err := p.editor.CurrentUserID(ctx)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("error getting current user: %w", err)
	}

	description := target.Description
	if description == "" {
		description = fmt.Sprintf("Playlist created via deepcut on %s", time.Now().Format("2006-01-02"))
	}

	pl, err := p.editor.CreatePlaylist(ctx, userID, strings.TrimSpace(target.Name), description, target.Public)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("error creating playlist: %w", err)
	}

	p.logger.Info("playlist created", zap.String("playlist_id", pl.ID), zap.String("name", pl.Name))
	p.sink.Logf(events.SeveritySuccess, "Created new playlist: %s (%s)", pl.Name, pl.ID)
	return pl, nil
}

// clear removes every track of pl, all occurrences at once.
func (p *Porter) clear(ctx context.Context, pl playlist.Playlist) error {
	if pl.TrackCount == 0 {
		p.sink.Logf(events.SeverityDetail, "Playlist '%s' is already empty", pl.Name)
		return nil
	}

	fetch := func(ctx context.Context, cursor string) (paging.Page[string], error) {
		return p.editor.PlaylistTrackURIs(ctx, pl.ID, cursor)
	}
	uris, err := paging.Collect(paging.All(ctx, fetch))
	if err != nil {
		return fmt.Errorf("listing tracks of playlist %s: %w", pl.ID, err)
	}

	uris = lo.Uniq(uris)
	if len(uris) == 0 {
		p.sink.Logf(events.SeverityDetail, "Playlist '%s' has no removable tracks", pl.Name)
		return nil
	}

	for _, chunk := range lo.Chunk(uris, BatchSize) {
		if err := p.editor.RemoveTracks(ctx, pl.ID, chunk); err != nil {
			return fmt.Errorf("error removing tracks from playlist %s: %w", pl.ID, err)
		}
	}

	p.logger.Info("playlist cleared", zap.String("playlist_id", pl.ID), zap.Int("removed", len(uris)))
	p.sink.Logf(events.SeverityDetail, "Removed all %d tracks from '%s'", len(uris), pl.Name)
	return nil
}

// AddTracks adds uris to the playlist in batches of BatchSize, pausing
// after every batch but the last. onBatch receives the running total after
// each batch.
func (p *Porter) AddTracks(ctx context.Context, playlistID string, uris []string, onBatch func(added, total int)) (int, error) {
	added := 0
	for i, chunk := range lo.Chunk(uris, BatchSize) {
		if i > 0 {
			if err := p.wait(ctx); err != nil {
				return added, err
			}
		}
		if err := p.editor.AddTracks(ctx, playlistID, chunk); err != nil {
			return added, fmt.Errorf("error adding tracks (batch %d, %d-%d): %w", i+1, added+1, added+len(chunk), err)
		}
		added += len(chunk)
		if onBatch != nil {
			onBatch(added, len(uris))
		}
	}

	p.logger.Info("tracks added", zap.String("playlist_id", playlistID), zap.Int("added", added))
	return added, nil
}

// wait sleeps for the batch pause, counted from the end of the previous batch.
func (p *Porter) wait(ctx context.Context) error {
	if p.pause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Check resolves a playlist for preview.
func (p *Porter) Check(ctx context.Context, input string) (playlist.Playlist, error) {
	id := playlist.ParseID(input)
	if id == "" {
		return playlist.Playlist{}, &playlist.ConfigError{Message: "a playlist ID or URL is required"}
	}
	return p.editor.Playlist(ctx, id)
}

// Delete unfollows a playlist. A playlist that no longer exists counts as deleted.
func (p *Porter) Delete(ctx context.Context, input string) error {
	id := playlist.ParseID(input)
	if id == "" {
		return &playlist.ConfigError{Message: "a playlist ID or URL is required"}
	}

	err := p.editor.Unfollow(ctx, id)
	if playlist.IsNotFound(err) {
		p.logger.Warn("playlist to delete not found", zap.String("playlist_id", id))
		p.sink.Logf(events.SeverityWarn, "Playlist %s was not found, nothing to delete", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error deleting playlist %s: %w", id, err)
	}

	p.logger.Info("playlist unfollowed", zap.String("playlist_id", id))
	p.sink.Logf(events.SeveritySuccess, "Playlist %s deleted (unfollowed)", id)
	return nil
}
