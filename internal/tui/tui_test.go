package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type recordingService struct {
	mu       sync.Mutex
	statuses []models.TaskStatus
}

func (s *recordingService) SetTaskStatus(_ context.Context, _ string, status models.TaskStatus, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

type focusHarness struct {
	engine  *focus.Engine
	sink    *EventSink
	service *recordingService
	clock   *testClock
}

func newFocusHarness(t *testing.T, sessions int, end time.Time, opts FocusOptions) (FocusModel, *focusHarness) {
	t.Helper()
	h := &focusHarness{
		sink:    NewEventSink(64),
		service: &recordingService{},
		clock:   &testClock{now: base},
	}
	h.engine = focus.New(h.service, h.sink, focus.Options{Clock: h.clock, Dispatch: func(fn func()) { fn() }})

	task := &models.Task{ID: "t1", Title: "Read chapter 3", Status: models.StatusInProgress, Priority: "High", EstimatedTime: 90, End: end}
	require.NoError(t, h.engine.Start(task, sessions, 1, 1))

	opts.Now = h.clock.Now
	return NewFocusModel(h.engine, h.sink.Events(), opts), h
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(msg)
}

func updateFocus(t *testing.T, m FocusModel, msg tea.Msg) (FocusModel, tea.Cmd) {
	t.Helper()
	next, cmd := update(t, m, msg)
	fm, ok := next.(FocusModel)
	require.True(t, ok)
	return fm, cmd
}

// tick advances the clock by one second and delivers a current tick
func (h *focusHarness) tick(t *testing.T, m FocusModel, n int) FocusModel {
	t.Helper()
	for i := 0; i < n; i++ {
		h.clock.now = h.clock.now.Add(time.Second)
		m, _ = updateFocus(t, m, tickMsg{gen: m.tickGen})
	}
	return m
}

// drain feeds every queued engine event into the model
func (h *focusHarness) drain(t *testing.T, m FocusModel) FocusModel {
	t.Helper()
	for {
		select {
		case ev := <-h.sink.ch:
			m, _ = updateFocus(t, m, eventMsg(ev))
		default:
			return m
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestFocusModelTickAdvancesEngine(t *testing.T) {
	m, h := newFocusHarness(t, 2, time.Time{}, FocusOptions{})
	assert.NotNil(t, m.Init())

	m, cmd := updateFocus(t, m, tickMsg{gen: m.tickGen})
	assert.NotNil(t, cmd)
	assert.Equal(t, 59, h.engine.State().SecondsRemaining)
}

func TestFocusModelPauseDropsStaleTicks(t *testing.T) {
	m, h := newFocusHarness(t, 2, time.Time{}, FocusOptions{})
	stale := m.tickGen

	m, cmd := updateFocus(t, m, runes("p"))
	assert.Nil(t, cmd)
	assert.True(t, h.engine.State().IsPaused)

	m, cmd = updateFocus(t, m, tickMsg{gen: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, 60, h.engine.State().SecondsRemaining)

	m, cmd = updateFocus(t, m, runes("p"))
	assert.NotNil(t, cmd)
	assert.False(t, h.engine.State().IsPaused)

	m, _ = updateFocus(t, m, tickMsg{gen: stale})
	assert.Equal(t, 60, h.engine.State().SecondsRemaining)

	_, _ = updateFocus(t, m, tickMsg{gen: m.tickGen})
	assert.Equal(t, 59, h.engine.State().SecondsRemaining)
}

func TestFocusModelBreakHeader(t *testing.T) {
	m, h := newFocusHarness(t, 2, time.Time{}, FocusOptions{})
	m = h.tick(t, m, 60)
	m = h.drain(t, m)

	state := h.engine.State()
	assert.Equal(t, focus.PhaseOnBreak, state.Phase)
	header, _ := m.phaseHeader(state)
	assert.Contains(t, header, "BREAK")
	assert.Contains(t, m.status, "Break started")
}

func TestFocusModelConfirmCompletion(t *testing.T) {
	m, h := newFocusHarness(t, 1, time.Time{}, FocusOptions{})
	m = h.tick(t, m, 60)
	m = h.drain(t, m)

	require.True(t, m.confirming)
	assert.False(t, h.engine.State().IsRunning)
	assert.Contains(t, m.status, "(y/n)")

	m, _ = updateFocus(t, m, runes("y"))
	assert.False(t, m.confirming)
	assert.Equal(t, []models.TaskStatus{models.StatusCompleted}, h.service.statuses)
	assert.Equal(t, "completed", m.Result().Outcome)
	assert.False(t, m.Result().Abandoned)
	assert.Contains(t, m.status, "Marking")
	assert.NotContains(t, m.status, "marked as Completed")

	// Restarting a completed task is refused
	m, cmd := updateFocus(t, m, runes("s"))
	assert.Nil(t, cmd)
	assert.True(t, m.statusIsError)
	assert.False(t, h.engine.State().IsRunning)
}

func TestFocusModelDeclineCompletion(t *testing.T) {
	m, h := newFocusHarness(t, 1, time.Time{}, FocusOptions{})
	m = h.tick(t, m, 60)
	m = h.drain(t, m)

	m, _ = updateFocus(t, m, runes("n"))
	assert.Empty(t, h.service.statuses)
	assert.Equal(t, "kept", m.Result().Outcome)

	// Confirm keys are ignored once the prompt is resolved
	m, _ = updateFocus(t, m, runes("y"))
	assert.Empty(t, h.service.statuses)
}

func TestFocusModelDeadlineExpires(t *testing.T) {
	m, h := newFocusHarness(t, 2, base.Add(30*time.Second), FocusOptions{})
	m = h.tick(t, m, 30)
	m = h.drain(t, m)

	assert.False(t, h.engine.State().IsRunning)
	assert.Equal(t, []models.TaskStatus{models.StatusExpired}, h.service.statuses)
	assert.Equal(t, "expired", m.Result().Outcome)
	assert.True(t, m.statusIsError)

	_, cmd := updateFocus(t, m, runes("s"))
	assert.Nil(t, cmd)
	assert.False(t, h.engine.State().IsRunning)
}

func TestFocusModelResetAndRestart(t *testing.T) {
	m, h := newFocusHarness(t, 2, time.Time{}, FocusOptions{})
	m = h.tick(t, m, 10)

	m, _ = updateFocus(t, m, runes("r"))
	assert.False(t, h.engine.State().IsRunning)
	assert.Empty(t, h.service.statuses)

	m, cmd := updateFocus(t, m, runes("s"))
	assert.NotNil(t, cmd)
	state := h.engine.State()
	assert.True(t, state.IsRunning)
	assert.Equal(t, 60, state.SecondsRemaining)
	assert.Equal(t, 1, state.CurrentSession)
	assert.Equal(t, 2, state.TotalSessions)
}

func TestFocusModelToggleDetails(t *testing.T) {
	var saved []bool
	m, _ := newFocusHarness(t, 2, time.Time{}, FocusOptions{
		OnToggleDetails: func(collapsed bool) error {
			saved = append(saved, collapsed)
			return nil
		},
	})

	m, _ = updateFocus(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.detailsCollapsed)
	m, _ = updateFocus(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.detailsCollapsed)
	assert.Equal(t, []bool{true, false}, saved)
}

func TestFocusModelToggleDetailsSaveError(t *testing.T) {
	m, _ := newFocusHarness(t, 2, time.Time{}, FocusOptions{
		OnToggleDetails: func(bool) error { return errors.New("read-only") },
	})

	m, _ = updateFocus(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.detailsCollapsed)
	assert.True(t, m.statusIsError)
	assert.Contains(t, m.status, "read-only")
}

func TestFocusModelView(t *testing.T) {
	m, _ := newFocusHarness(t, 2, base.Add(2*time.Hour), FocusOptions{Theme: LightTheme})
	assert.Equal(t, "Loading...", m.View())

	m, _ = updateFocus(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Read chapter 3")
	assert.Contains(t, view, "FOCUS")
	assert.Contains(t, view, "Session 1 of 2")
	assert.Contains(t, view, "Due today")

	m, _ = updateFocus(t, m, runes("p"))
	assert.Contains(t, m.View(), "PAUSED")
}

func TestFocusModelQuitAbandonsRun(t *testing.T) {
	m, _ := newFocusHarness(t, 2, time.Time{}, FocusOptions{})

	m, cmd := updateFocus(t, m, runes("q"))
	assert.True(t, isQuit(cmd))
	assert.True(t, m.Result().Abandoned)
	assert.Equal(t, "", m.View())
}

func TestEventSinkNeverBlocks(t *testing.T) {
	sink := NewEventSink(1)
	sink.Notify(focus.Event{Kind: focus.EventWorkStarted})
	sink.Notify(focus.Event{Kind: focus.EventBreakStarted})

	require.Len(t, sink.ch, 1)
	ev := <-sink.Events()
	assert.Equal(t, focus.EventWorkStarted, ev.Kind)
}

func TestRenderBigClock(t *testing.T) {
	clock := renderBigClock(65, DarkTheme.AccentBright)
	assert.Len(t, splitLines(clock), 5)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func TestThemeFor(t *testing.T) {
	assert.Equal(t, LightTheme, ThemeFor("light"))
	assert.Equal(t, DarkTheme, ThemeFor("dark"))
	assert.Equal(t, DarkTheme, ThemeFor("neon"))
}

func pickerTasks() []models.Task {
	return []models.Task{
		{ID: "t2", Title: "Revise notes", Status: models.StatusTodo},
		{ID: "t1", Title: "Read chapter 3", Status: models.StatusInProgress, End: base.Add(3 * time.Hour)},
	}
}

func updatePicker(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := update(t, m, msg)
	pm, ok := next.(PickerModel)
	require.True(t, ok)
	return pm, cmd
}

func TestPickerRejectsTaskNotInProgress(t *testing.T) {
	m := NewPickerModel(pickerTasks(), DarkTheme, base, 80, 20)

	m, cmd := updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, m.Selected())
	assert.Equal(t, `Change the status of "Revise notes" to In Progress first: studyfocus status t2 inprogress`, m.err)
	assert.Contains(t, m.View(), "Change the status")
}

func TestPickerSelectsInProgressTask(t *testing.T) {
	m := NewPickerModel(pickerTasks(), DarkTheme, base, 80, 20)

	m, _ = updatePicker(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := updatePicker(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.Selected())
	assert.Equal(t, "t1", m.Selected().ID)
	assert.True(t, isQuit(cmd))
}

func TestPickerCancel(t *testing.T) {
	m := NewPickerModel(pickerTasks(), DarkTheme, base, 80, 20)

	m, cmd := updatePicker(t, m, runes("q"))
	assert.True(t, isQuit(cmd))
	assert.Nil(t, m.Selected())
}

func TestTaskItemDescription(t *testing.T) {
	item := taskItem{task: pickerTasks()[1], now: base}
	assert.Equal(t, "Read chapter 3", item.Title())
	assert.Contains(t, item.Description(), "In Progress · 🔥 Due today")
}

func updateLogin(t *testing.T, m LoginModel, msg tea.Msg) (LoginModel, tea.Cmd) {
	t.Helper()
	next, cmd := update(t, m, msg)
	lm, ok := next.(LoginModel)
	require.True(t, ok)
	return lm, cmd
}

func TestLoginSubmitsCredentials(t *testing.T) {
	var gotEmail, gotPassword string
	m := NewLoginModel(DarkTheme, "linh@example.com", func(email, password string) error {
		gotEmail, gotPassword = email, password
		return nil
	})
	assert.Equal(t, StepPassword, m.currentStep)

	m, _ = updateLogin(t, m, runes("secret"))
	m, cmd := updateLogin(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	m, cmd = updateLogin(t, m, cmd())
	assert.True(t, m.Completed())
	assert.True(t, isQuit(cmd))
	assert.Equal(t, "linh@example.com", gotEmail)
	assert.Equal(t, "secret", gotPassword)
}

func TestLoginShowsBackendError(t *testing.T) {
	m := NewLoginModel(DarkTheme, "linh@example.com", func(string, string) error {
		return errors.New("Invalid email or password")
	})

	m, _ = updateLogin(t, m, runes("wrong"))
	m, cmd := updateLogin(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = updateLogin(t, m, cmd())

	assert.False(t, m.Completed())
	assert.False(t, m.submitting)
	assert.Equal(t, "Invalid email or password", m.validationErr)
	assert.Equal(t, "", m.inputs[StepPassword].Value())
}

func TestLoginValidatesEmail(t *testing.T) {
	called := false
	m := NewLoginModel(DarkTheme, "", func(string, string) error {
		called = true
		return nil
	})
	assert.Equal(t, StepEmail, m.currentStep)

	m, _ = updateLogin(t, m, runes("not-an-email"))
	m, _ = updateLogin(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Enter a valid email address", m.validationErr)
	assert.Equal(t, StepEmail, m.currentStep)
	assert.False(t, called)
}

func TestLoginCancel(t *testing.T) {
	m := NewLoginModel(DarkTheme, "", func(string, string) error { return nil })
	m, cmd := updateLogin(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Cancelled())
	assert.True(t, isQuit(cmd))
}
