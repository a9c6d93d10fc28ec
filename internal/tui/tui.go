// Package tui contains the bubbletea programs of studyfocus.
package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/studyfocus/internal/focus"
	"github.com/balkashynov/studyfocus/internal/models"
)

// ErrCancelled is returned when the user leaves a TUI without choosing
var ErrCancelled = errors.New("cancelled")

// RunFocus runs the timer TUI for a started engine. Quitting while the run
// is active abandons it; quitting at the completion prompt declines it.
func RunFocus(engine *focus.Engine, sink *EventSink, opts FocusOptions) (FocusResult, error) {
	var events <-chan focus.Event
	if sink != nil {
		events = sink.Events()
	}

	p := tea.NewProgram(NewFocusModel(engine, events, opts), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		engine.Reset()
		return FocusResult{}, err
	}

	m, ok := finalModel.(FocusModel)
	if !ok {
		return FocusResult{}, fmt.Errorf("unexpected model %T", finalModel)
	}
	result := m.Result()

	if result.Abandoned {
		engine.Reset()
	}
	if _, pending := engine.PendingCompletion(); pending {
		_ = engine.ConfirmCompletion(false)
		result.Outcome = "kept"
	}
	return result, nil
}

// RunPicker lets the user choose an In Progress task
func RunPicker(tasks []models.Task, theme Theme) (*models.Task, error) {
	p := tea.NewProgram(NewPickerModel(tasks, theme, time.Now(), 80, 20), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(PickerModel)
	if !ok || m.Selected() == nil {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}

// RunLogin shows the sign-in form until login succeeds or the user cancels
func RunLogin(theme Theme, email string, login LoginFunc) error {
	p := tea.NewProgram(NewLoginModel(theme, email, login))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(LoginModel)
	if !ok || !m.Completed() {
		return ErrCancelled
	}
	return nil
}
