package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"deepcut/internal/paging"
	"deepcut/internal/playlist"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

const (
	// pageLimit is the largest page the catalog endpoints serve.
	pageLimit = 50
	// playlistPageLimit is the largest page of playlist items.
	playlistPageLimit = 100

	// requestRate and requestBurst keep a long catalog walk under the
	// service's rolling rate limit.
	requestRate  = 10
	requestBurst = 10

	DefaultMarket = "US"
)

// SpotifyAdapter adapts the Spotify Web API to ApiAdapter.
type SpotifyAdapter struct {
	BaseAdapter // Embed the BaseAdapter
	client      *spotify.Client
	market      string
	limiter     *rate.Limiter
}

// NewSpotifyAdapter wraps an authorized client. market is the country used
// for top-track lookups.
func NewSpotifyAdapter(client *spotify.Client, market string) *SpotifyAdapter {
	if market == "" {
		market = DefaultMarket
	}
	a := &SpotifyAdapter{
		BaseAdapter: NewBaseAdapter("Spotify"),
		client:      client,
		market:      market,
		limiter:     rate.NewLimiter(rate.Limit(requestRate), requestBurst),
	}
	a.SetAuthenticated(client != nil)
	return a
}

// CurrentUser returns the account the client is authorized for.
func (a *SpotifyAdapter) CurrentUser(ctx context.Context) (playlist.User, error) {
	if err := a.CheckAuth(); err != nil {
		return playlist.User{}, err
	}
	if u, ok := a.cachedUser(); ok {
		return u, nil
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return playlist.User{}, err
	}

	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		return playlist.User{}, translate(err, "user", "me")
	}
	user := playlist.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		URL:         u.ExternalURLs["spotify"],
		ImageURL:    firstImage(u.Images),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.ID
	}
	a.rememberUser(user)
	return user, nil
}

// CurrentUserID returns the ID of the authorized account.
func (a *SpotifyAdapter) CurrentUserID(ctx context.Context) (string, error) {
	u, err := a.CurrentUser(ctx)
	return u.ID, err
}

// SearchArtist returns the best artist match for name.
func (a *SpotifyAdapter) SearchArtist(ctx context.Context, name string) (playlist.Artist, error) {
	if err := a.ready(ctx); err != nil {
		return playlist.Artist{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return playlist.Artist{}, &playlist.ConfigError{Message: "an artist name is required"}
	}

	res, err := a.client.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return playlist.Artist{}, translate(err, "artist", name)
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return playlist.Artist{}, &playlist.NotFoundError{Kind: "artist", ID: name}
	}

	art := res.Artists.Artists[0]
	return playlist.Artist{
		ID:        string(art.ID),
		Name:      art.Name,
		Followers: int(art.Followers.Count),
		ImageURL:  firstImage(art.Images),
		URL:       art.ExternalURLs["spotify"],
	}, nil
}

// ArtistAlbums returns one page of the artist's releases of the given type.
func (a *SpotifyAdapter) ArtistAlbums(ctx context.Context, artistID string, albumType playlist.AlbumType, cursor string) (paging.Page[playlist.Album], error) {
	if err := a.ready(ctx); err != nil {
		return paging.Page[playlist.Album]{}, err
	}
	kind, err := albumTypeOf(albumType)
	if err != nil {
		return paging.Page[playlist.Album]{}, err
	}
	offset, err := offsetOf(cursor)
	if err != nil {
		return paging.Page[playlist.Album]{}, err
	}

	page, err := a.client.GetArtistAlbums(ctx, spotify.ID(artistID), []spotify.AlbumType{kind},
		spotify.Limit(pageLimit), spotify.Offset(offset))
	if err != nil {
		return paging.Page[playlist.Album]{}, translate(err, "artist", artistID)
	}

	albums := lo.Map(page.Albums, func(al spotify.SimpleAlbum, _ int) playlist.Album {
		return playlist.Album{
			ID:    string(al.ID),
			Name:  al.Name,
			Type:  playlist.AlbumType(strings.ToLower(al.AlbumType)),
			Group: al.AlbumGroup,
		}
	})
	return paging.Page[playlist.Album]{Items: albums, Next: nextCursor(page.Next, offset, len(albums))}, nil
}

// AlbumTracks returns one page of an album's tracks.
func (a *SpotifyAdapter) AlbumTracks(ctx context.Context, albumID string, cursor string) (paging.Page[playlist.Track], error) {
	if err := a.ready(ctx); err != nil {
		return paging.Page[playlist.Track]{}, err
	}
	offset, err := offsetOf(cursor)
	if err != nil {
		return paging.Page[playlist.Track]{}, err
	}

	page, err := a.client.GetAlbumTracks(ctx, spotify.ID(albumID), spotify.Limit(pageLimit), spotify.Offset(offset))
	if err != nil {
		return paging.Page[playlist.Track]{}, translate(err, "album", albumID)
	}

	tracks := lo.Map(page.Tracks, func(t spotify.SimpleTrack, _ int) playlist.Track {
		return simpleTrack(t)
	})
	return paging.Page[playlist.Track]{Items: tracks, Next: nextCursor(page.Next, offset, len(tracks))}, nil
}

// ArtistTopTracks returns the artist's top tracks in the adapter's market.
func (a *SpotifyAdapter) ArtistTopTracks(ctx context.Context, artistID string) ([]playlist.Track, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	top, err := a.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), a.market)
	if err != nil {
		return nil, translate(err, "artist", artistID)
	}
	return lo.Map(top, func(t spotify.FullTrack, _ int) playlist.Track {
		return fullTrack(&t)
	}), nil
}

// Tracks returns full details, including popularity, for the given IDs.
func (a *SpotifyAdapter) Tracks(ctx context.Context, ids []string) ([]playlist.Track, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	full, err := a.client.GetTracks(ctx, lo.Map(ids, func(id string, _ int) spotify.ID {
		return spotify.ID(id)
	}))
	if err != nil {
		return nil, translate(err, "tracks", strings.Join(ids, ","))
	}

	var tracks []playlist.Track
	for _, t := range full {
		// unknown IDs come back as null
		if t == nil {
			continue
		}
		tracks = append(tracks, fullTrack(t))
	}
	return tracks, nil
}

// Playlist fetches playlist metadata.
func (a *SpotifyAdapter) Playlist(ctx context.Context, playlistID string) (playlist.Playlist, error) {
	if err := a.ready(ctx); err != nil {
		return playlist.Playlist{}, err
	}
	p, err := a.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return playlist.Playlist{}, translate(err, "playlist", playlistID)
	}
	return fromFullPlaylist(p), nil
}

// CreatePlaylist creates a non-collaborative playlist owned by userID.
func (a *SpotifyAdapter) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (playlist.Playlist, error) {
	if err := a.ready(ctx); err != nil {
		return playlist.Playlist{}, err
	}
	p, err := a.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return playlist.Playlist{}, translate(err, "user", userID)
	}
	pl := fromFullPlaylist(p)
	pl.TrackCount = 0
	return pl, nil
}

// PlaylistTrackURIs returns one page of the track URIs in a playlist. Local
// files and episodes are skipped since they cannot be removed by track ID.
func (a *SpotifyAdapter) PlaylistTrackURIs(ctx context.Context, playlistID string, cursor string) (paging.Page[string], error) {
	if err := a.ready(ctx); err != nil {
		return paging.Page[string]{}, err
	}
	offset, err := offsetOf(cursor)
	if err != nil {
		return paging.Page[string]{}, err
	}

	page, err := a.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
		spotify.Limit(playlistPageLimit), spotify.Offset(offset))
	if err != nil {
		return paging.Page[string]{}, translate(err, "playlist", playlistID)
	}

	var uris []string
	for _, item := range page.Items {
		if item.IsLocal || item.Track.Track == nil || item.Track.Track.URI == "" {
			continue
		}
		uris = append(uris, string(item.Track.Track.URI))
	}
	return paging.Page[string]{Items: uris, Next: nextCursor(page.Next, offset, len(page.Items))}, nil
}

// AddTracks appends up to 100 tracks to a playlist.
func (a *SpotifyAdapter) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if _, err := a.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs(uris)...); err != nil {
		return translate(err, "playlist", playlistID)
	}
	return nil
}

// RemoveTracks removes every occurrence of up to 100 tracks from a playlist.
func (a *SpotifyAdapter) RemoveTracks(ctx context.Context, playlistID string, uris []string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if _, err := a.client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), trackIDs(uris)...); err != nil {
		return translate(err, "playlist", playlistID)
	}
	return nil
}

// Unfollow removes the playlist from the user's library, which is how the
// service deletes playlists.
func (a *SpotifyAdapter) Unfollow(ctx context.Context, playlistID string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if err := a.client.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return translate(err, "playlist", playlistID)
	}
	return nil
}

// UploadCover sets the playlist image. The client base64-encodes the body.
func (a *SpotifyAdapter) UploadCover(ctx context.Context, playlistID string, jpeg io.Reader) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if err := a.client.SetPlaylistImage(ctx, spotify.ID(playlistID), jpeg); err != nil {
		return translate(err, "playlist", playlistID)
	}
	return nil
}

// ready checks the adapter is logged in and waits for a request slot.
func (a *SpotifyAdapter) ready(ctx context.Context) error {
	if err := a.CheckAuth(); err != nil {
		return err
	}
	return a.limiter.Wait(ctx)
}

// translate maps client errors onto the application's error types.
func translate(err error, kind, id string) error {
	var (
		status  int
		message string
	)
	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case errors.As(err, &apiErr):
		status, message = apiErr.Status, apiErr.Message
	case errors.As(err, &apiErrPtr):
		status, message = apiErrPtr.Status, apiErrPtr.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &playlist.APIError{Message: err.Error()}
	}

	if status == http.StatusNotFound {
		return &playlist.NotFoundError{Kind: kind, ID: id}
	}
	return &playlist.APIError{Status: status, Message: message}
}

func albumTypeOf(t playlist.AlbumType) (spotify.AlbumType, error) {
	switch t {
	case playlist.AlbumTypeAlbum:
		return spotify.AlbumTypeAlbum, nil
	case playlist.AlbumTypeSingle:
		return spotify.AlbumTypeSingle, nil
	case playlist.AlbumTypeCompilation:
		return spotify.AlbumTypeCompilation, nil
	}
	return 0, &playlist.ConfigError{Message: fmt.Sprintf("invalid album type %q", t)}
}

func offsetOf(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid page cursor %q", cursor)
	}
	return offset, nil
}

// nextCursor returns the offset of the following page, or "" on the last one.
func nextCursor(next string, offset, n int) string {
	if next == "" || n == 0 {
		return ""
	}
	return strconv.Itoa(offset + n)
}

func trackIDs(uris []string) []spotify.ID {
	return lo.Map(uris, func(uri string, _ int) spotify.ID {
		return spotify.ID(strings.TrimPrefix(uri, "spotify:track:"))
	})
}

func simpleTrack(t spotify.SimpleTrack) playlist.Track {
	return playlist.Track{
		ID:       string(t.ID),
		URI:      string(t.URI),
		Name:     t.Name,
		Duration: int(t.Duration),
	}
}

func fullTrack(t *spotify.FullTrack) playlist.Track {
	track := simpleTrack(t.SimpleTrack)
	pop := int(t.Popularity)
	track.Popularity = &pop
	return track
}

func fromFullPlaylist(p *spotify.FullPlaylist) playlist.Playlist {
	owner := p.Owner.DisplayName
	if owner == "" {
		owner = p.Owner.ID
	}
	return playlist.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Public:      p.IsPublic,
		Owner:       owner,
		TrackCount:  int(p.Tracks.Total),
		URL:         p.ExternalURLs["spotify"],
		ImageURL:    firstImage(p.Images),
	}
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
