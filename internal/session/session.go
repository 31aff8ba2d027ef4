// Package session holds the state shared between commands of one process:
// the artist selection, the last playlist touched and the run guard.
package session

import (
	"context"
	"errors"
	"sync"

	"deepcut/internal/playlist"
)

// ErrBusy is returned by Run while another run is in progress.
var ErrBusy = errors.New("a playlist flow is already running")

// Session is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	artists    map[string]playlist.Artist
	order      []string
	coverURL   string
	playlistID string
	running    bool
}

// New creates an empty session.
func New() *Session {
	return &Session{artists: make(map[string]playlist.Artist)}
}

// AddArtist selects an artist. It reports false if the ID was already selected.
// The artist's image becomes the cover candidate either way.
func (s *Session) AddArtist(a playlist.Artist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ImageURL != "" {
		s.coverURL = a.ImageURL
	}
	if _, ok := s.artists[a.ID]; ok {
		return false
	}
	s.artists[a.ID] = a
	s.order = append(s.order, a.ID)
	return true
}

// RemoveArtist drops an artist from the selection.
func (s *Session) RemoveArtist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[id]; !ok {
		return false
	}
	delete(s.artists, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops the whole selection.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artists = make(map[string]playlist.Artist)
	s.order = nil
	s.coverURL = ""
}

// Artists returns the selection in the order it was made.
func (s *Session) Artists() []playlist.Artist {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]playlist.Artist, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.artists[id])
	}
	return out
}

// CoverURL is the image of the most recently added artist.
func (s *Session) CoverURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coverURL
}

// SetPlaylistID records the playlist the last run wrote to.
func (s *Session) SetPlaylistID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlistID = id
}

// PlaylistID returns the playlist the last run wrote to.
func (s *Session) PlaylistID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playlistID
}

// Run calls fn unless another Run is in progress, in which case it returns
// ErrBusy without calling fn.
func (s *Session) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrBusy
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	return fn(ctx)
}

// Running reports whether a run is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
