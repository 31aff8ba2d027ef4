package catalog

import (
	"context"
	"time"

	"deepcut/internal/events"
	"deepcut/internal/playlist"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Request describes what to collect for a set of artists.
type Request struct {
	Artists      []playlist.Artist
	AlbumTypes   []playlist.AlbumType
	ExcludeShort bool
	Strategy     playlist.Strategy
}

// progressPause yields between albums so the consumer can redraw.
var progressPause = 10 * time.Millisecond

// Collect gathers the deduplicated track URIs for the request using its strategy.
func (c *Collector) Collect(ctx context.Context, req Request) ([]string, error) {
	if req.Strategy == playlist.StrategyIceberg {
		return c.collectIceberg(ctx, req)
	}
	return c.collectCatalog(ctx, req)
}

func (c *Collector) collectIceberg(ctx context.Context, req Request) ([]string, error) {
	c.sink.Logf(events.SeverityWarn, "Iceberg mode: collecting at most 40 tracks per artist")

	set := newTrackSet()
	total := len(req.Artists)
	for i, artist := range req.Artists {
		c.sink.Logf(events.SeverityDetail, "[%d/%d] Collecting iceberg tracks for %s", i+1, total, artist.Name)

		tiers, err := c.Iceberg(ctx, artist.ID, req.AlbumTypes, req.ExcludeShort)
		if err != nil {
			return nil, err
		}
		for _, uri := range tiers.URIs() {
			set.add(playlist.Track{URI: uri})
		}

		c.sink.Progress(events.PhaseArtists, i+1, total, 0)
		c.sink.Progress(events.PhaseTracks, set.len(), total, 0)
		if err := pause(ctx); err != nil {
			return nil, err
		}
	}
	return set.uris(), nil
}

func (c *Collector) collectCatalog(ctx context.Context, req Request) ([]string, error) {
	set := newTrackSet()

	if req.Strategy == playlist.StrategyTopTracks {
		for _, artist := range req.Artists {
			top, err := c.TopTracks(ctx, artist.ID, req.ExcludeShort)
			if err != nil {
				return nil, err
			}
			for _, t := range top {
				set.add(t)
			}
			c.sink.Logf(events.SeverityDetail, "Added %d top tracks of %s first", len(top), artist.Name)
		}
	}

	var albums []playlist.Album
	seenAlbums := make(map[string]struct{})
	for _, artist := range req.Artists {
		c.sink.Logf(events.SeverityDetail, "Collecting albums of %s", artist.Name)
		artistAlbums, err := c.ArtistAlbums(ctx, artist.ID, req.AlbumTypes)
		if err != nil {
			return nil, err
		}
		for _, album := range artistAlbums {
			if _, ok := seenAlbums[album.ID]; ok {
				continue
			}
			seenAlbums[album.ID] = struct{}{}
			albums = append(albums, album)
		}
	}

	c.sink.Logf(events.SeveritySuccess, "Found %d unique albums and singles", len(albums))
	c.sink.Progress(events.PhaseAlbums, 0, len(albums), 0)
	if len(albums) == 0 {
		return nil, &playlist.ConfigError{Message: "no albums match the selected criteria"}
	}

	for i, album := range albums {
		c.sink.Logf(events.SeverityDetail, "[%d/%d] Collecting tracks of %s", i+1, len(albums), album.Name)
		tracks, err := c.AlbumTracks(ctx, album.ID, req.ExcludeShort)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			set.add(t)
		}

		c.sink.Progress(events.PhaseAlbums, i+1, len(albums), 0)
		c.sink.Progress(events.PhaseTracks, set.len(), len(albums), 0)
		if err := pause(ctx); err != nil {
			return nil, err
		}
	}

	if req.Strategy != playlist.StrategyPopularity {
		return set.uris(), nil
	}

	details, err := c.Details(ctx, set.order, req.ExcludeShort)
	if err != nil {
		return nil, err
	}
	popularity := make(map[string]*int, len(details))
	for _, d := range details {
		popularity[d.ID] = d.Popularity
	}

	// tracks without details are kept and rank last
	merged := lo.Map(set.order, func(t playlist.Track, _ int) playlist.Track {
		t.Popularity = popularity[t.ID]
		return t
	})
	ranked := newTrackSet()
	for _, t := range SortByPopularity(merged) {
		ranked.add(t)
	}
	c.logger.Info("sorted by popularity",
		zap.Int("collected", set.len()),
		zap.Int("with_details", len(popularity)))
	return ranked.uris(), nil
}

func pause(ctx context.Context) error {
	if progressPause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(progressPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
