package adapters

import (
	"context"
	"io"

	"deepcut/internal/catalog"
	"deepcut/internal/playlist"
	"deepcut/internal/porter"
)

// ApiAdapter defines everything the application needs from the streaming
// service: catalog reads for track selection and playlist edits.
type ApiAdapter interface {
	// Authentication state
	IsAuthenticated() bool

	catalog.API
	porter.Editor

	CurrentUser(ctx context.Context) (playlist.User, error)
	// SearchArtist returns the best match or a *playlist.NotFoundError.
	SearchArtist(ctx context.Context, name string) (playlist.Artist, error)
	// UploadCover replaces the playlist image with a JPEG.
	UploadCover(ctx context.Context, playlistID string, jpeg io.Reader) error
}

var _ ApiAdapter = (*SpotifyAdapter)(nil)
