// Package tui is the interactive terminal front end of the planner.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashureev/outing-planner/internal/itinerary"
	"github.com/ashureev/outing-planner/internal/workflow"
)

const (
	firstQuestion = "Where would you like to go? (an area like 'Hongdae' or a place like 'Lotte World')"
	progressLines = 6
)

// Planner is the workflow surface the TUI drives.
type Planner interface {
	Start(ctx context.Context, request, sessionID string, opts workflow.Options) (*workflow.Outcome, error)
	Resume(ctx context.Context, sessionID, feedback string) (*workflow.Outcome, error)
}

type state int

const (
	stateAsking state = iota
	stateRunning
	stateDone
)

type outcomeMsg struct {
	out *workflow.Outcome
	err error
}

// Model is the Bubble Tea model of one planning conversation.
type Model struct {
	planner   Planner
	opts      workflow.Options
	ctx       context.Context
	sessionID string

	state    state
	question string
	outcome  *workflow.Outcome
	err      error

	input   textinput.Model
	spinner spinner.Model
	width   int
}

// New creates a model that starts a fresh session with opts.
func New(ctx context.Context, planner Planner, opts workflow.Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type and press Enter"
	ti.CharLimit = 200
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = PromptStyle

	return Model{
		planner:  planner,
		opts:     opts,
		ctx:      ctx,
		state:    stateAsking,
		question: firstQuestion,
		input:    ti,
		spinner:  s,
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, planner Planner, opts workflow.Options) error {
	_, err := tea.NewProgram(New(ctx, planner, opts), tea.WithContext(ctx)).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
		if m.state == stateDone && msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-4)
		return m, nil
	case outcomeMsg:
		return m.handleOutcome(msg), nil
	case spinner.TickMsg:
		if m.state != stateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state != stateAsking {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateDone:
		return m, tea.Quit
	case stateRunning:
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" && m.sessionID == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.err = nil
	m.state = stateRunning

	planner, ctx, opts, sessionID := m.planner, m.ctx, m.opts, m.sessionID
	run := func() tea.Msg {
		var out *workflow.Outcome
		var err error
		if sessionID == "" {
			out, err = planner.Start(ctx, text, "", opts)
		} else {
			out, err = planner.Resume(ctx, sessionID, text)
		}
		return outcomeMsg{out: out, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m Model) handleOutcome(msg outcomeMsg) Model {
	m.err = msg.err
	if msg.out == nil {
		m.state = stateAsking
		return m
	}
	m.outcome = msg.out
	m.sessionID = msg.out.SessionID
	if msg.out.AwaitingInput() {
		m.state = stateAsking
		m.question = msg.out.Prompt
		return m
	}
	m.state = stateDone
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Outing Planner"))
	b.WriteString("\n")

	if m.outcome != nil {
		if lines := m.outcome.Progress; len(lines) > 0 {
			for _, line := range lines[max(0, len(lines)-progressLines):] {
				b.WriteString(SubtleStyle.Render(firstLine(line)))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		if it := m.outcome.Itinerary; it != nil && len(it.Schedule) > 0 {
			b.WriteString(BoxStyle.Render(itinerary.Summarize(it.Schedule)))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	switch m.state {
	case stateRunning:
		b.WriteString(fmt.Sprintf("%s Planning...\n", m.spinner.View()))
	case stateAsking:
		b.WriteString(PromptStyle.Render(m.question))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render("enter: send • esc: quit"))
	case stateDone:
		b.WriteString(SuccessStyle.Render("Itinerary complete."))
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render("q: quit"))
	}
	return b.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
