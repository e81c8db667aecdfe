package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// keyMap lists the viewer's key bindings.
type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	First   key.Binding
	Last    key.Binding
	Up      key.Binding
	Down    key.Binding
	Reduced key.Binding
	Gates   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		First:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "initial state")),
		Last:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "final state")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev qubit")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next qubit")),
		Reduced: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "toggle zeros")),
		Gates:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "gates")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Up, k.Down, k.Reduced, k.Gates, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.Up, k.Down, k.Reduced, k.Gates, k.Quit},
	}
}

// Model steps through a circuit column by column and shows the state after each.
type Model struct {
	circuit     *Circuit
	source      string
	log         *Logger
	column      int // last applied column, -1 before the first
	cursorQubit int
	reduced     bool
	showGates   bool
	width       int
	height      int

	state     *StateVector
	issues    []Issue // issues up to column
	allIssues []Issue
	err       error

	report viewport.Model
	keys   keyMap
	help   help.Model
}

func NewModel(c *Circuit, source string, log *Logger) Model {
	if log == nil {
		log = NoopLogger()
	}
	m := Model{
		circuit: c,
		source:  source,
		log:     log,
		column:  -1,
		reduced: true,
		report:  viewport.New(40, 10),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	_, m.allIssues, _ = SimulateCircuit(c, -1, NoopLogger())
	m.simulate()
	return m
}

// simulate recomputes the state after the current column.
func (m *Model) simulate() {
	if m.column < 0 {
		m.state, m.err = NewStateVector(m.circuit.NumQubits)
		m.issues = nil
	} else {
		m.state, m.issues, m.err = SimulateCircuit(m.circuit, m.column, m.log)
	}
	m.report.SetContent(m.stateContent())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		stateWidth, panelHeight := m.stateSize()
		m.report.Width = max(stateWidth-4, 10)
		m.report.Height = max(panelHeight-3, 3)
		m.help.Width = m.width - 4
		m.report.SetContent(m.stateContent())
		return m, nil

	case tea.KeyMsg:
		last := len(m.circuit.Columns) - 1
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.column >= 0 {
				m.column--
				m.simulate()
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			if m.column < last {
				m.column++
				m.simulate()
			}
			return m, nil
		case key.Matches(msg, m.keys.First):
			m.column = -1
			m.simulate()
			return m, nil
		case key.Matches(msg, m.keys.Last):
			m.column = last
			m.simulate()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursorQubit > 0 {
				m.cursorQubit--
				m.report.SetContent(m.stateContent())
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursorQubit < m.circuit.NumQubits-1 {
				m.cursorQubit++
				m.report.SetContent(m.stateContent())
			}
			return m, nil
		case key.Matches(msg, m.keys.Reduced):
			m.reduced = !m.reduced
			m.report.SetContent(m.stateContent())
			return m, nil
		case key.Matches(msg, m.keys.Gates):
			m.showGates = !m.showGates
			return m, nil
		}
	}

	// Scrolling keys and mouse go to the report.
	var cmd tea.Cmd
	m.report, cmd = m.report.Update(msg)
	return m, cmd
}

func (m Model) stateSize() (width, height int) {
	controlsHeight := 3
	return m.width / 3, max(m.height-controlsHeight-2, 6)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	stateWidth, panelHeight := m.stateSize()
	circuitWidth := m.width - stateWidth - 4

	circuitPanel := m.renderCircuitPanel(circuitWidth, panelHeight)
	statePanel := m.renderStatePanel(stateWidth, panelHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, 1)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, statePanel)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)
}

// RunViewer opens the interactive viewer on the terminal.
func RunViewer(c *Circuit, source string, log *Logger) error {
	p := tea.NewProgram(NewModel(c, source, log), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
