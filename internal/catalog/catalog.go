// Package catalog aggregates an artist's catalog and selects the tracks
// that go into a playlist.
package catalog

import (
	"context"

	"deepcut/internal/events"
	"deepcut/internal/paging"
	"deepcut/internal/playlist"

	"go.uber.org/zap"
)

const (
	// DetailBatchSize is the most track IDs the service accepts per detail lookup.
	DetailBatchSize = 50
	// TopTracksLimit caps how many of an artist's top tracks are used.
	TopTracksLimit = 10
)

// API is the read-only catalog capability the selection engine depends on.
type API interface {
	ArtistAlbums(ctx context.Context, artistID string, albumType playlist.AlbumType, cursor string) (paging.Page[playlist.Album], error)
	AlbumTracks(ctx context.Context, albumID string, cursor string) (paging.Page[playlist.Track], error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]playlist.Track, error)
	// Tracks returns full details for up to DetailBatchSize IDs. Unknown IDs are omitted.
	Tracks(ctx context.Context, ids []string) ([]playlist.Track, error)
}

// Collector walks the catalog through an API.
type Collector struct {
	api         API
	logger      *zap.Logger
	sink        events.Sink
	concurrency int
}

// NewCollector creates a collector. concurrency bounds parallel detail lookups.
func NewCollector(api API, logger *zap.Logger, sink events.Sink, concurrency int) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		api:         api,
		logger:      logger,
		sink:        sink,
		concurrency: concurrency,
	}
}

// trackSet is a set of tracks keyed by URI that remembers insertion order.
type trackSet struct {
	order []playlist.Track
	seen  map[string]struct{}
}

func newTrackSet() *trackSet {
	return &trackSet{seen: make(map[string]struct{})}
}

func (s *trackSet) add(t playlist.Track) bool {
	if _, ok := s.seen[t.URI]; ok {
		return false
	}
	s.seen[t.URI] = struct{}{}
	s.order = append(s.order, t)
	return true
}

func (s *trackSet) has(uri string) bool {
	_, ok := s.seen[uri]
	return ok
}

func (s *trackSet) len() int {
	return len(s.order)
}

func (s *trackSet) uris() []string {
	uris := make([]string, len(s.order))
	for i, t := range s.order {
		uris[i] = t.URI
	}
	return uris
}
