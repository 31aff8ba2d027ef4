package catalog

import (
	"context"
	"fmt"

	"deepcut/internal/paging"
	"deepcut/internal/playlist"

	"go.uber.org/zap"
)

// ArtistAlbums lists the artist's albums for every type filter, in filter
// order. An album returned under more than one filter is kept the first time
// it is seen.
func (c *Collector) ArtistAlbums(ctx context.Context, artistID string, types []playlist.AlbumType) ([]playlist.Album, error) {
	var albums []playlist.Album
	seen := make(map[string]struct{})

	for _, albumType := range types {
		fetch := func(ctx context.Context, cursor string) (paging.Page[playlist.Album], error) {
			return c.api.ArtistAlbums(ctx, artistID, albumType, cursor)
		}
		for album, err := range paging.All(ctx, fetch) {
			if err != nil {
				return nil, fmt.Errorf("listing %s releases of artist %s: %w", albumType, artistID, err)
			}
			if _, ok := seen[album.ID]; ok {
				continue
			}
			seen[album.ID] = struct{}{}
			albums = append(albums, album)
		}
	}

	c.logger.Debug("artist albums collected",
		zap.String("artist_id", artistID),
		zap.Int("albums", len(albums)))
	return albums, nil
}
