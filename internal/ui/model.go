// Package ui renders flow events, either as a live terminal view or as
// plain lines.
package ui

import (
	"fmt"
	"strings"

	"deepcut/internal/events"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const maxLogsInView = 12

// eventMsg wraps a flow event for the bubbletea loop.
type eventMsg struct {
	event events.Event
}

// closedMsg tells the model that the event queue is closed.
type closedMsg struct{}

type counter struct {
	current, total int
}

// Model is the bubbletea model of a build run.
type Model struct {
	ch     <-chan events.Event
	cancel func()

	state    events.State
	counters map[events.Phase]counter
	added    int
	logs     []events.LogEvent
	done     *events.DoneEvent
	quitting bool

	bar   progress.Model
	width int
}

// NewModel creates a model reading from ch. cancel is called on Ctrl+C.
func NewModel(ch <-chan events.Event, cancel func()) *Model {
	return &Model{
		ch:       ch,
		cancel:   cancel,
		state:    events.StateIdle,
		counters: make(map[events.Phase]counter),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg{event: e}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-20))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.quitting {
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case closedMsg:
		return m, tea.Quit
	case eventMsg:
		m.apply(msg.event)
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *Model) apply(e events.Event) {
	switch e := e.(type) {
	case events.StateEvent:
		m.state = e.State
	case events.ProgressEvent:
		m.counters[e.Phase] = counter{current: e.Current, total: e.Total}
		if e.Phase == events.PhaseAdding {
			m.added = e.Added
		}
	case events.LogEvent:
		m.logs = append(m.logs, e)
		if len(m.logs) > maxLogsInView {
			m.logs = m.logs[len(m.logs)-maxLogsInView:]
		}
	case events.DoneEvent:
		m.done = &e
	}
}

// Done returns the terminal event, if one was received.
func (m *Model) Done() (events.DoneEvent, bool) {
	if m.done == nil {
		return events.DoneEvent{}, false
	}
	return *m.done, true
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("deepcut") + "  " + stateStyle.Render(string(m.state)) + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %d   %s %d/%d   %s %d\n",
		labelStyle.Render("Artists:"), m.counters[events.PhaseArtists].current,
		labelStyle.Render("Albums:"), m.counters[events.PhaseAlbums].current, m.counters[events.PhaseAlbums].total,
		labelStyle.Render("Tracks:"), m.counters[events.PhaseTracks].current))

	if adding, ok := m.counters[events.PhaseAdding]; ok && adding.total > 0 {
		pct := float64(adding.current) / float64(adding.total)
		b.WriteString(fmt.Sprintf("  %s %s %d/%d\n", labelStyle.Render("Adding:"), m.bar.ViewAs(pct), m.added, adding.total))
	}
	b.WriteString("\n")

	for _, l := range m.logs {
		b.WriteString("  " + RenderLog(l) + "\n")
	}

	if m.done != nil {
		b.WriteString("\n  " + Summary(*m.done) + "\n")
	} else if m.quitting {
		b.WriteString("\n  " + helpStyle.Render("Cancelling...") + "\n")
	} else {
		b.WriteString("\n  " + helpStyle.Render("ctrl+c to cancel") + "\n")
	}
	return b.String()
}

// Summary is a one-line description of a finished run.
func Summary(d events.DoneEvent) string {
	switch {
	case d.Err != nil:
		return failedStyle.Render(fmt.Sprintf("Failed (%s): %v", d.Category, d.Err))
	case d.DryRun:
		return titleStyle.Render(fmt.Sprintf("Dry run finished: %d tracks collected", d.Collected))
	default:
		line := fmt.Sprintf("Finished: %d of %d tracks added to '%s'", d.Added, d.Collected, d.Playlist.Name)
		if d.Playlist.URL != "" {
			line += " " + d.Playlist.URL
		}
		return titleStyle.Render(line)
	}
}

// Run shows the live view until the event channel is closed and returns
// the terminal event.
func Run(ch <-chan events.Event, cancel func()) (events.DoneEvent, error) {
	model := NewModel(ch, cancel)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return events.DoneEvent{}, err
	}
	if fm, ok := final.(*Model); ok {
		if d, ok := fm.Done(); ok {
			return d, nil
		}
	}
	return events.DoneEvent{}, nil
}
