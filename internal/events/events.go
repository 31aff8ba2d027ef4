// Package events carries progress, log and state notifications from
// background work to a single consumer.
package events

import (
	"fmt"
	"time"

	"deepcut/internal/playlist"
)

// Severity of a user-facing log line
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityDetail
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	case SeverityDetail:
		return "detail"
	default:
		return "info"
	}
}

// Phase identifies which counter a progress event updates
type Phase string

const (
	PhaseArtists Phase = "ARTIST_COUNT"
	PhaseAlbums  Phase = "ALBUM_COUNT"
	PhaseTracks  Phase = "TRACK_COUNT"
	PhaseAdding  Phase = "ADDING_TRACKS"
)

// State of the build flow
type State string

const (
	StateIdle              State = "Idle"
	StateValidating        State = "Validating"
	StateCollectingCatalog State = "CollectingCatalog"
	StateManagingPlaylist  State = "ManagingPlaylist"
	StateAddingTracks      State = "AddingTracks"
	StateUploadingCover    State = "UploadingCover"
	StateSummarizing       State = "Summarizing"
)

// Event is one of StateEvent, ProgressEvent, LogEvent or DoneEvent.
type Event interface {
	event()
}

type StateEvent struct {
	State State
}

type ProgressEvent struct {
	Phase   Phase
	Current int
	Total   int
	Added   int
}

type LogEvent struct {
	Time     time.Time
	Severity Severity
	Message  string
}

// DoneEvent is the terminal event of a flow run. Err is nil on success.
type DoneEvent struct {
	Playlist  playlist.Playlist
	Collected int
	Added     int
	DryRun    bool
	Err       error
	Category  playlist.Category
}

func (StateEvent) event()    {}
func (ProgressEvent) event() {}
func (LogEvent) event()      {}
func (DoneEvent) event()     {}

// Sink receives events. A nil Sink drops everything.
type Sink func(Event)

// Emit sends e to the sink.
func (s Sink) Emit(e Event) {
	if s != nil {
		s(e)
	}
}

// Logf emits a formatted LogEvent.
func (s Sink) Logf(sev Severity, format string, args ...any) {
	s.Emit(LogEvent{Time: time.Now(), Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// Progress emits a ProgressEvent.
func (s Sink) Progress(phase Phase, current, total, added int) {
	s.Emit(ProgressEvent{Phase: phase, Current: current, Total: total, Added: added})
}

// Queue hands events from workers to one consumer over a channel.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Event, size)}
}

// Sink returns a sink that enqueues events. Sends block when the buffer is full.
func (q *Queue) Sink() Sink {
	return func(e Event) {
		q.ch <- e
	}
}

// Events is the consumer side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Close closes the queue; no sink may be used afterwards.
func (q *Queue) Close() {
	close(q.ch)
}
