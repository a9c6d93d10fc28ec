package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/parser"
)

// EventSink is a focus.Notifier that queues engine events for the TUI.
// Sends never block the engine; when the queue is full the event is dropped.
type EventSink struct {
	ch chan focus.Event
}

// NewEventSink creates a sink buffering up to size events
func NewEventSink(size int) *EventSink {
	if size <= 0 {
		size = 32
	}
	return &EventSink{ch: make(chan focus.Event, size)}
}

// Notify implements focus.Notifier
func (s *EventSink) Notify(ev focus.Event) {
	select {
	case s.ch <- ev:
	default:
	}
}

// Events returns the queue read by the focus model
func (s *EventSink) Events() <-chan focus.Event {
	return s.ch
}

// FocusOptions configures the focus timer TUI
type FocusOptions struct {
	Theme            Theme
	DetailsCollapsed bool
	// OnToggleDetails persists the details panel state, may be nil
	OnToggleDetails func(collapsed bool) error
	// Interval between engine ticks, one second by default
	Interval time.Duration
	Now      func() time.Time
}

// tickMsg drives engine.Tick. gen invalidates ticks scheduled before a
// pause, reset or restart.
type tickMsg struct {
	gen int
}

// eventMsg carries one engine event into Update
type eventMsg focus.Event

// FocusModel hosts a focus.Engine: big clock, phase header, progress bar
// and a collapsible task details panel
type FocusModel struct {
	width  int
	height int

	engine *focus.Engine
	events <-chan focus.Event
	plan   focus.Plan // last started plan, used by restart
	opts   FocusOptions

	keys     focusKeyMap
	help     help.Model
	progress progress.Model

	tickGen int

	// UI state
	detailsCollapsed bool
	confirming       bool // waiting for y/n after the last session
	outcome          string
	status           string
	statusIsError    bool
	quitting         bool
}

// NewFocusModel creates the timer model for an engine that has already
// been started
func NewFocusModel(engine *focus.Engine, events <-chan focus.Event, opts FocusOptions) FocusModel {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Theme.Name == "" {
		opts.Theme = DarkTheme
	}

	bar := progress.New(
		progress.WithGradient(string(opts.Theme.AccentMain), string(opts.Theme.AccentBright)),
		progress.WithoutPercentage(),
	)

	m := FocusModel{
		engine:           engine,
		events:           events,
		plan:             engine.State().Plan,
		opts:             opts,
		keys:             newFocusKeyMap(),
		help:             help.New(),
		progress:         bar,
		detailsCollapsed: opts.DetailsCollapsed,
	}
	m.syncKeys()
	return m
}

// Init starts the tick loop and the event listener
func (m FocusModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), waitForEvent(m.events))
}

func (m FocusModel) tickCmd() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.opts.Interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func waitForEvent(events <-chan focus.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update handles messages
func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.tickGen {
			// Stale tick from before a pause or reset
			return m, nil
		}
		m.engine.Tick()
		state := m.engine.State()
		m.syncKeys()
		if state.IsRunning && !state.IsPaused {
			return m, m.tickCmd()
		}
		return m, nil

	case eventMsg:
		m.handleEvent(focus.Event(msg))
		m.syncKeys()
		return m, waitForEvent(m.events)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width/2-8, 10), 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m FocusModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Details):
		m.detailsCollapsed = !m.detailsCollapsed
		if m.opts.OnToggleDetails != nil {
			if err := m.opts.OnToggleDetails(m.detailsCollapsed); err != nil {
				m.setError(fmt.Sprintf("Could not save panel state: %v", err))
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		state := m.engine.State()
		if state.IsPaused {
			m.engine.Resume()
			m.tickGen++
			m.setStatus("Resumed.")
			return m, m.tickCmd()
		}
		m.engine.Pause()
		m.tickGen++
		m.setStatus("Paused.")
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		m.tickGen++
		m.outcome = ""
		m.setStatus("Timer reset. Press s to start again.")
		m.syncKeys()
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if m.plan.Task == nil {
			return m, nil
		}
		if m.outcome == "completed" || m.outcome == "expired" {
			m.setError(fmt.Sprintf("%q is no longer In Progress.", m.plan.Task.Title))
			return m, nil
		}
		err := m.engine.Start(m.plan.Task, m.plan.TotalSessions, m.plan.WorkSeconds/60, m.plan.BreakSeconds/60)
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.tickGen++
		m.outcome = ""
		m.setStatus(fmt.Sprintf("Session 1 started on %q.", m.plan.Task.Title))
		m.syncKeys()
		return m, m.tickCmd()

	case key.Matches(msg, m.keys.Yes), key.Matches(msg, m.keys.No):
		markCompleted := key.Matches(msg, m.keys.Yes)
		if err := m.engine.ConfirmCompletion(markCompleted); err != nil {
			if !errors.Is(err, focus.ErrNothingPending) {
				m.setError(err.Error())
			}
			return m, nil
		}
		m.confirming = false
		if markCompleted {
			m.outcome = "completed"
			m.setStatus(fmt.Sprintf("Marking %q as Completed...", m.plan.Task.Title))
		} else {
			m.outcome = "kept"
			m.setStatus(fmt.Sprintf("%q stays In Progress.", m.plan.Task.Title))
		}
		m.syncKeys()
		return m, nil
	}

	return m, nil
}

func (m *FocusModel) handleEvent(ev focus.Event) {
	switch ev.Kind {
	case focus.EventAllSessionsCompleted:
		m.confirming = true
		m.setStatus(ev.Message + " Mark it as Completed? (y/n)")
	case focus.EventDeadlineExpired:
		m.confirming = false
		m.outcome = "expired"
		m.setError("⏰ " + ev.Message)
	case focus.EventServiceCallFailed:
		m.setError(fmt.Sprintf("%s: %v", ev.Message, ev.Err))
	default:
		m.setStatus(ev.Message)
	}
}

func (m *FocusModel) setStatus(s string) {
	m.status = s
	m.statusIsError = false
}

func (m *FocusModel) setError(s string) {
	m.status = s
	m.statusIsError = true
}

func (m *FocusModel) syncKeys() {
	m.keys.setMode(m.engine.State().IsRunning, m.confirming)
}

// View renders the focus TUI
func (m FocusModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	state := m.engine.State()
	helpBar := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(m.help.View(m.keys))
	statusLine := m.renderStatusLine()

	// Height left for panels after the status line, help bar and gaps
	contentHeight := max(m.height-4, 1)

	// Narrow screens or a collapsed panel show only the timer
	if m.width < 90 || m.detailsCollapsed {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTimerPanel(state, m.width, contentHeight),
			statusLine,
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(state, leftWidth, contentHeight),
		"  ",
		m.renderTaskDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		statusLine,
		helpBar,
	)
}

// renderTimerPanel renders the phase header, task title, clock and progress
func (m FocusModel) renderTimerPanel(state focus.State, width, height int) string {
	theme := m.opts.Theme
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	var components []string

	header, headerColor := m.phaseHeader(state)
	components = append(components, center.Foreground(headerColor).Bold(true).Render(header))

	if task := m.plan.Task; task != nil {
		title := parser.TruncateTitle(task.Title, width-4)
		components = append(components, center.Foreground(theme.PrimaryText).Bold(true).Render(title))
	}

	seconds := state.SecondsRemaining
	if !state.IsRunning {
		seconds = 0
	}
	clockLines := strings.Split(renderBigClock(seconds, headerColor), "\n")
	for i, line := range clockLines {
		clockLines[i] = center.Render(line)
	}
	components = append(components, strings.Join(clockLines, "\n"))

	if state.IsRunning {
		components = append(components, center.Render(m.progress.ViewAs(state.Progress())))
		info := fmt.Sprintf("Session %d of %d · %s left in this %s",
			state.CurrentSession, state.TotalSessions,
			parser.FormatClock(state.SecondsRemaining), phaseNoun(state.Phase))
		components = append(components, center.Foreground(theme.SecondaryText).Italic(true).Render(info))
	}

	content := strings.Join(components, "\n\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m FocusModel) phaseHeader(state focus.State) (string, lipgloss.Color) {
	theme := m.opts.Theme
	switch {
	case m.confirming:
		return "🎉  ALL SESSIONS DONE  🎉", theme.Success
	case m.outcome == "expired":
		return "⏰  DEADLINE REACHED", theme.Error
	case m.outcome != "":
		return "✔  FOCUS RUN FINISHED", theme.Success
	case !state.IsRunning:
		return "IDLE", theme.DisabledText
	case state.IsPaused:
		return "⏸  PAUSED", theme.Warning
	case state.Phase == focus.PhaseOnBreak:
		return "☕  BREAK", theme.AccentBreak
	default:
		return "⏱  FOCUS", theme.AccentBright
	}
}

func phaseNoun(p focus.Phase) string {
	if p == focus.PhaseOnBreak {
		return "break"
	}
	return "session"
}

// bigDigits is the 5x5 art for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders the remaining seconds as ASCII art
func renderBigClock(seconds int, color lipgloss.Color) string {
	var lines [5]strings.Builder
	for _, char := range parser.FormatClock(seconds) {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

// renderTaskDetailsPanel renders the bound task
func (m FocusModel) renderTaskDetailsPanel(width, height int) string {
	task := m.plan.Task
	if task == nil {
		return ""
	}
	theme := m.opts.Theme
	line := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)

	var b strings.Builder
	b.WriteString("\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.PrimaryText).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.AccentMain).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(titleStyle.Render(task.Title))
	b.WriteString("\n\n")

	b.WriteString(line.Render(fmt.Sprintf("🔵 Status: %s", fg(theme.AccentBright).Bold(true).Render(string(task.Status)))))
	b.WriteString("\n")

	priorityIcon, priorityColor := priorityStyle(task.Priority, theme)
	priority := task.Priority
	if priority == "" {
		priority = "none"
	}
	b.WriteString(line.Render(fmt.Sprintf("%s Priority: %s", priorityIcon, fg(priorityColor).Render(priority))))
	b.WriteString("\n")

	estimate := "none"
	if task.EstimatedTime > 0 {
		estimate = parser.FormatRemaining(time.Duration(task.EstimatedTime) * time.Minute)
	}
	b.WriteString(line.Render(fmt.Sprintf("⌛ Estimate: %s", fg(theme.SecondaryText).Render(estimate))))
	b.WriteString("\n")

	deadlineColor := theme.Warning
	if !task.HasDeadline() {
		deadlineColor = theme.DisabledText
	}
	b.WriteString(line.Render(fg(deadlineColor).Render(parser.FormatDeadline(task.End, m.opts.Now()))))
	b.WriteString("\n")

	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.SecondaryText).
			Italic(true).
			Width(width - 8).
			Render(task.Description))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width).
		MaxHeight(height).
		Render(b.String())
}

func priorityStyle(priority string, theme Theme) (string, lipgloss.Color) {
	switch strings.ToLower(priority) {
	case "high":
		return "🔴", theme.Error
	case "medium":
		return "🟡", theme.Warning
	case "low":
		return "🟢", theme.SecondaryText
	default:
		return "⚪", theme.DisabledText
	}
}

func (m FocusModel) renderStatusLine() string {
	color := m.opts.Theme.SecondaryText
	if m.statusIsError {
		color = m.opts.Theme.Error
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.status)
}

// FocusResult summarises how the focus TUI ended
type FocusResult struct {
	Task      models.Task
	Outcome   string // completed, kept, expired or empty when abandoned
	Abandoned bool   // quit while a run was still active
}

// Result reports the final state after the program exits
func (m FocusModel) Result() FocusResult {
	result := FocusResult{Outcome: m.outcome}
	if m.plan.Task != nil {
		result.Task = *m.plan.Task
	}
	result.Abandoned = m.engine.State().IsRunning
	return result
}
