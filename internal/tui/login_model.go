package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"
)

// LoginFunc signs in with the entered credentials
type LoginFunc func(email, password string) error

// Step is a field of the login form
type Step int

const (
	StepEmail Step = iota
	StepPassword
)

// loginResultMsg reports the outcome of a LoginFunc call
type loginResultMsg struct {
	err error
}

// LoginModel is the sign-in form
type LoginModel struct {
	currentStep Step
	inputs      []textinput.Model
	width       int
	height      int
	theme       Theme
	login       LoginFunc
	validate    *validator.Validate

	// State
	submitting    bool
	completed     bool
	cancelled     bool
	validationErr string
}

// NewLoginModel creates the form. email pre-fills the first field.
func NewLoginModel(theme Theme, email string, login LoginFunc) LoginModel {
	inputs := make([]textinput.Model, 2)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = fg(theme.PrimaryText)
		inputs[i].PlaceholderStyle = fg(theme.SecondaryText)
		inputs[i].Cursor.Style = fg(theme.AccentBright)
	}

	inputs[StepEmail].Placeholder = "you@example.com"
	inputs[StepEmail].CharLimit = 254
	inputs[StepEmail].SetValue(email)

	inputs[StepPassword].Placeholder = "password"
	inputs[StepPassword].EchoMode = textinput.EchoPassword
	inputs[StepPassword].EchoCharacter = '•'

	m := LoginModel{
		inputs:   inputs,
		theme:    theme,
		login:    login,
		validate: validator.New(),
	}
	// Skip straight to the password when the email is known
	if strings.TrimSpace(email) != "" {
		m.currentStep = StepPassword
	}
	m.inputs[m.currentStep].Focus()
	return m
}

// Init initializes the model
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.validationErr = msg.err.Error()
			m.inputs[StepPassword].SetValue("")
			return m.focusStep(StepPassword)
		}
		m.completed = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.submitting {
			if msg.String() == "ctrl+c" {
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "tab", "down":
			return m.focusStep(StepPassword)
		case "shift+tab", "up":
			return m.focusStep(StepEmail)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.currentStep], cmd = m.inputs[m.currentStep].Update(msg)
	return m, cmd
}

// handleEnter validates the current field and submits on the last one
func (m LoginModel) handleEnter() (tea.Model, tea.Cmd) {
	m.validationErr = ""
	email := m.Email()

	if err := m.validate.Var(email, "required,email"); err != nil {
		m.validationErr = "Enter a valid email address"
		return m.focusStep(StepEmail)
	}
	if m.currentStep == StepEmail {
		return m.focusStep(StepPassword)
	}

	password := m.inputs[StepPassword].Value()
	if password == "" {
		m.validationErr = "Password is required"
		return m, nil
	}

	m.submitting = true
	login := m.login
	return m, func() tea.Msg {
		return loginResultMsg{err: login(email, password)}
	}
}

func (m LoginModel) focusStep(step Step) (LoginModel, tea.Cmd) {
	m.inputs[m.currentStep].Blur()
	m.currentStep = step
	m.inputs[step].Focus()
	return m, textinput.Blink
}

// Email returns the entered email address
func (m LoginModel) Email() string {
	return strings.TrimSpace(m.inputs[StepEmail].Value())
}

// Completed reports whether the login succeeded
func (m LoginModel) Completed() bool {
	return m.completed
}

// Cancelled reports whether the user left the form
func (m LoginModel) Cancelled() bool {
	return m.cancelled
}

// View renders the form
func (m LoginModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.AccentBright).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("🔐 Sign in to studyfocus"))
	b.WriteString("\n\n")

	labels := []string{"📧 Email", "🔑 Password"}
	for i, label := range labels {
		labelStyle := fg(m.theme.SecondaryText)
		marker := "  "
		if Step(i) == m.currentStep {
			labelStyle = fg(m.theme.AccentBright).Bold(true)
			marker = "▶ "
		}
		b.WriteString(labelStyle.Render(marker + label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.submitting {
		b.WriteString(fg(m.theme.Warning).Render("Signing in..."))
		b.WriteString("\n")
	}
	if m.validationErr != "" {
		b.WriteString(fg(m.theme.Error).Bold(true).Render("❌ " + m.validationErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fg(m.theme.HelpText).Italic(true).Render("Enter: Next/Sign in | Tab/↓: Next | Shift+Tab/↑: Back | Esc: Cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2).
		Render(b.String())
}
