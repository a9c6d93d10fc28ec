package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/studyfocus/internal/models"
	"github.com/balkashynov/studyfocus/internal/parser"
)

// taskItem adapts a task to list.DefaultItem
type taskItem struct {
	task models.Task
	now  time.Time
}

func (i taskItem) Title() string { return i.task.Title }

func (i taskItem) Description() string {
	return fmt.Sprintf("%s · %s", i.task.Status, parser.FormatDeadline(i.task.End, i.now))
}

func (i taskItem) FilterValue() string { return i.task.Title }

var pickKey = key.NewBinding(
	key.WithKeys("enter"),
	key.WithHelp("enter", "focus on task"),
)

// PickerModel lets the user choose the task to bind the focus timer to
type PickerModel struct {
	list     list.Model
	theme    Theme
	selected *models.Task
	err      string
	quitting bool
}

// NewPickerModel lists tasks for selection. width and height are the
// initial list size until the first WindowSizeMsg.
func NewPickerModel(tasks []models.Task, theme Theme, now time.Time, width, height int) PickerModel {
	items := make([]list.Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskItem{task: task, now: now})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.AccentBright).
		BorderForeground(theme.AccentMain)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.SecondaryText).
		BorderForeground(theme.AccentMain)

	l := list.New(items, delegate, width, height)
	l.Title = "📋 Pick a task to focus on"
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(theme.PrimaryText).
		Background(theme.AccentMain).
		Bold(true).
		Padding(0, 1)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{pickKey} }

	return PickerModel{list: l, theme: theme}
}

// Init initializes the model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Let the list own every key while the user is typing a filter
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, pickKey) {
			item, ok := m.list.SelectedItem().(taskItem)
			if !ok {
				return m, nil
			}
			if !item.task.IsInProgress() {
				m.err = fmt.Sprintf("Change the status of %q to %s first: studyfocus status %s inprogress", item.task.Title, models.StatusInProgress, item.task.ID)
				return m, nil
			}
			task := item.task
			m.selected = &task
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker
func (m PickerModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}
	errLine := ""
	if m.err != "" {
		errLine = fg(m.theme.Error).Bold(true).Render("⚠ " + m.err)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), errLine)
}

// Selected returns the chosen task, nil when the picker was cancelled
func (m PickerModel) Selected() *models.Task {
	return m.selected
}
