package catalog

import (
	"context"
	"slices"

	"deepcut/internal/events"
	"deepcut/internal/playlist"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	midTierSize  = 10
	deepTierSize = 20
)

// Tiers is an artist's iceberg selection: the service's top tracks, the most
// popular of the rest, and the next layer of deep cuts.
type Tiers struct {
	Top  []string
	Mid  []string
	Deep []string
}

// URIs concatenates the tiers in order.
func (t Tiers) URIs() []string {
	uris := make([]string, 0, len(t.Top)+len(t.Mid)+len(t.Deep))
	uris = append(uris, t.Top...)
	uris = append(uris, t.Mid...)
	return append(uris, t.Deep...)
}

// Len is the total number of selected tracks.
func (t Tiers) Len() int {
	return len(t.Top) + len(t.Mid) + len(t.Deep)
}

// Iceberg selects at most 40 tracks for one artist: up to 10 top tracks, then
// the 10 most popular remaining catalog tracks, then the next 20.
func (c *Collector) Iceberg(ctx context.Context, artistID string, types []playlist.AlbumType, excludeShort bool) (Tiers, error) {
	top, err := c.TopTracks(ctx, artistID, excludeShort)
	if err != nil {
		return Tiers{}, err
	}
	topURIs := lo.Map(top, func(t playlist.Track, _ int) string { return t.URI })
	topSet := lo.SliceToMap(topURIs, func(uri string) (string, struct{}) { return uri, struct{}{} })

	albums, err := c.ArtistAlbums(ctx, artistID, types)
	if err != nil {
		return Tiers{}, err
	}

	candidates := newTrackSet()
	for _, album := range albums {
		tracks, err := c.AlbumTracks(ctx, album.ID, excludeShort)
		if err != nil {
			return Tiers{}, err
		}
		for _, t := range tracks {
			if _, inTop := topSet[t.URI]; inTop {
				continue
			}
			candidates.add(t)
		}
	}

	if candidates.len() == 0 {
		c.logger.Warn("no tracks outside the top tracks", zap.String("artist_id", artistID))
		c.sink.Logf(events.SeverityWarn, "No tracks besides the top %d found for artist %s, continuing with top tracks only", len(topURIs), artistID)
		return Tiers{Top: topURIs}, nil
	}

	details, err := c.Details(ctx, candidates.order, excludeShort)
	if err != nil {
		return Tiers{}, err
	}

	tiers := rankTiers(topURIs, details)
	c.logger.Info("iceberg selection",
		zap.String("artist_id", artistID),
		zap.Int("top", len(tiers.Top)),
		zap.Int("mid", len(tiers.Mid)),
		zap.Int("deep", len(tiers.Deep)))
	c.sink.Logf(events.SeverityDetail, "Iceberg result: top %d, mid %d, deep %d, total %d",
		len(tiers.Top), len(tiers.Mid), len(tiers.Deep), tiers.Len())
	return tiers, nil
}

// rankTiers sorts the non-top candidates by popularity (absent last, stable)
// and slices them into the mid and deep tiers.
func rankTiers(top []string, candidates []playlist.Track) Tiers {
	ranked := SortByPopularity(candidates)

	tiers := Tiers{Top: top}
	mid := min(midTierSize, len(ranked))
	deep := min(midTierSize+deepTierSize, len(ranked))
	tiers.Mid = lo.Map(ranked[:mid], func(t playlist.Track, _ int) string { return t.URI })
	tiers.Deep = lo.Map(ranked[mid:deep], func(t playlist.Track, _ int) string { return t.URI })
	return tiers
}

// SortByPopularity returns a copy of tracks ordered by descending popularity.
// Tracks without a score sort after a score of 0; ties keep input order.
func SortByPopularity(tracks []playlist.Track) []playlist.Track {
	ranked := slices.Clone(tracks)
	slices.SortStableFunc(ranked, func(a, b playlist.Track) int {
		return b.PopularityScore() - a.PopularityScore()
	})
	return ranked
}
