package catalog

import (
	"context"
	"fmt"

	"deepcut/internal/events"
	"deepcut/internal/paging"
	"deepcut/internal/playlist"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AlbumTracks returns the album's tracks in album order. With excludeShort,
// tracks shorter than a minute are dropped. Tracks are not deduplicated.
func (c *Collector) AlbumTracks(ctx context.Context, albumID string, excludeShort bool) ([]playlist.Track, error) {
	fetch := func(ctx context.Context, cursor string) (paging.Page[playlist.Track], error) {
		return c.api.AlbumTracks(ctx, albumID, cursor)
	}

	var tracks []playlist.Track
	for track, err := range paging.All(ctx, fetch) {
		if err != nil {
			return nil, fmt.Errorf("listing tracks of album %s: %w", albumID, err)
		}
		if !track.Playable(excludeShort) {
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// TopTracks returns up to TopTracksLimit of the artist's top tracks that pass the duration filter.
func (c *Collector) TopTracks(ctx context.Context, artistID string, excludeShort bool) ([]playlist.Track, error) {
	top, err := c.api.ArtistTopTracks(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks of artist %s: %w", artistID, err)
	}
	top = lo.Filter(top, func(t playlist.Track, _ int) bool { return t.Playable(excludeShort) })
	if len(top) > TopTracksLimit {
		top = top[:TopTracksLimit]
	}
	return top, nil
}

// Details looks up full track details (including popularity) in batches of
// DetailBatchSize. A failed batch is reported and skipped; only a cancelled
// context aborts. The result keeps the input order.
func (c *Collector) Details(ctx context.Context, tracks []playlist.Track, excludeShort bool) ([]playlist.Track, error) {
	chunks := lo.Chunk(tracks, DetailBatchSize)
	results := make([][]playlist.Track, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			ids := lo.Map(chunk, func(t playlist.Track, _ int) string { return t.ID })
			details, err := c.api.Tracks(gctx, ids)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.logger.Warn("track detail batch failed",
					zap.Int("batch", i),
					zap.Int("size", len(ids)),
					zap.Error(err))
				c.sink.Logf(events.SeverityError, "Track detail lookup failed for %d tracks: %v", len(ids), err)
				return nil
			}
			results[i] = lo.Filter(details, func(t playlist.Track, _ int) bool { return t.Playable(excludeShort) })
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(results), nil
}
