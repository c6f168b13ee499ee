// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/practice"
)

var (
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	taskStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type tickMsg time.Time

// Model implements the Bubble Tea practice UI.
type Model struct {
	run   *practice.Run
	input textinput.Model

	width  int
	height int

	feedback   string
	feedbackOK bool
	quit       bool
	err        error
}

// NewModel constructs a practice TUI model.
func NewModel(run *practice.Run) *Model {
	input := textinput.New()
	input.Placeholder = "answer"
	input.CharLimit = 64
	input.Prompt = ""
	input.Focus()
	return &Model{run: run, input: input}
}

// Quit reports whether the user stopped the run early.
func (m *Model) Quit() bool {
	return m.quit
}

// Err returns the error that ended the run, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if value == "" {
		return nil
	}
	if practice.IsQuit(value) {
		m.quit = true
		return tea.Quit
	}
	if _, err := decimal.NewFromString(value); err != nil {
		m.feedback = fmt.Sprintf("%q is not a number", value)
		m.feedbackOK = false
		return nil
	}
	ok, err := m.run.Submit(value)
	if err != nil {
		m.err = err
		return tea.Quit
	}
	m.feedbackOK = ok
	if ok {
		m.feedback = "***"
	} else {
		m.feedback = "Incorrect, try again"
	}
	if m.run.Done() {
		return tea.Quit
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	task := m.run.Session.Task()
	lines := []string{
		hintStyle.Render(fmt.Sprintf("Round to %d decimal points", task.ResultDecimalPoints)),
		"",
		taskStyle.Render(task.Task+" = ") + m.input.View(),
		"",
		m.renderFeedback(),
	}
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFeedback() string {
	if m.feedback == "" {
		return ""
	}
	if m.feedbackOK {
		return correctStyle.Render(m.feedback)
	}
	return incorrectStyle.Render(m.feedback)
}

func (m *Model) renderFooter() string {
	state := m.run.Session.State()
	solved := fmt.Sprintf("Solved %d", state.NumCorrectAnswers)
	if m.run.Target > 0 {
		solved = fmt.Sprintf("Solved %d/%d", state.NumCorrectAnswers, m.run.Target)
	}
	segments := []string{
		solved,
		fmt.Sprintf("Incorrect %d", state.NumIncorrectAnswers),
		fmt.Sprintf("%ds", int(state.SecondsSinceStarted)),
		"q to quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
