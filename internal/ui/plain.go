package ui

import (
	"fmt"
	"io"

	"deepcut/internal/events"
)

// Print writes events as lines until ch is closed and returns the terminal
// event. Progress is printed only for playlist adds.
func Print(w io.Writer, ch <-chan events.Event) events.DoneEvent {
	var done events.DoneEvent
	for e := range ch {
		switch e := e.(type) {
		case events.StateEvent:
			if e.State != events.StateIdle {
				fmt.Fprintf(w, "== %s\n", e.State)
			}
		case events.LogEvent:
			fmt.Fprintf(w, "[%s] %s\n", e.Severity, e.Message)
		case events.ProgressEvent:
			if e.Phase == events.PhaseAdding && e.Current > 0 {
				fmt.Fprintf(w, "   added %d/%d\n", e.Current, e.Total)
			}
		case events.DoneEvent:
			done = e
			fmt.Fprintln(w, plainSummary(e))
		}
	}
	return done
}

func plainSummary(d events.DoneEvent) string {
	switch {
	case d.Err != nil:
		return fmt.Sprintf("FAILED (%s): %v", d.Category, d.Err)
	case d.DryRun:
		return fmt.Sprintf("DRY RUN: %d tracks collected", d.Collected)
	default:
		return fmt.Sprintf("DONE: %d of %d tracks added to '%s' (%s)", d.Added, d.Collected, d.Playlist.Name, d.Playlist.ID)
	}
}
