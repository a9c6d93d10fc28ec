package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// focusKeyMap holds the focus timer key bindings
type focusKeyMap struct {
	Pause   key.Binding
	Reset   key.Binding
	Restart key.Binding
	Yes     key.Binding
	No      key.Binding
	Details key.Binding
	Quit    key.Binding
}

func newFocusKeyMap() focusKeyMap {
	return focusKeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pause/resume"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Restart: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start again"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "mark completed"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "keep in progress"),
		),
		Details: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "details"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k focusKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Restart, k.Yes, k.No, k.Details, k.Quit}
}

// FullHelp implements help.KeyMap
func (k focusKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// setMode enables only the bindings that apply to the current screen
func (k *focusKeyMap) setMode(running, confirming bool) {
	k.Pause.SetEnabled(running)
	k.Reset.SetEnabled(running)
	k.Restart.SetEnabled(!running && !confirming)
	k.Yes.SetEnabled(confirming)
	k.No.SetEnabled(confirming)
}
