package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/toons/internal/desktop"
	"github.com/tatianab/toons/internal/models"
	"github.com/tatianab/toons/internal/penguins"
)

type sessionState int

const (
	stateRunning sessionState = iota
	stateExiting
	stateDone
	stateError
)

// moveStep is how far one key press drags the selected window, in pixels.
const moveStep = 8

const panelWidth = 26

type model struct {
	state    sessionState
	colony   *penguins.Colony
	desk     *desktop.Desktop
	screen   *screen
	grid     grid
	selected models.WindowID
	paused   bool
	// exitFrames counts bomber frames still to play.
	exitFrames int
	help       help.Model
	err        error
	width      int
	height     int
}

var (
	deskColor = lipgloss.Color("#1C1C1C")

	deskStyle = lipgloss.NewStyle().
			Background(deskColor)

	windowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#875F87")).
			Bold(true)

	popupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")).
			Background(lipgloss.Color("#3A3A3A"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(colony *penguins.Colony, desk *desktop.Desktop) model {
	m := model{
		state:  stateRunning,
		colony: colony,
		desk:   desk,
		screen: &screen{},
		help:   help.New(),
	}
	m.resize(80, 24)
	return m
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(m.colony.Delay(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	dw, dh := m.colony.Engine().DisplaySize()
	m.grid = newGrid(dw, dh, width-panelWidth-3, height-3)
	m.help.Width = width
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		switch m.state {
		case stateRunning:
			if !m.paused {
				if err := m.step(); err != nil {
					m.err = err
					m.state = stateError
					return m, nil
				}
			}
			return m, m.tick()

		case stateExiting:
			if m.exitFrames > 0 {
				if err := m.colony.ExitFrame(m.screen); err != nil {
					m.err = err
					m.state = stateError
					return m, nil
				}
				m.exitFrames--
				return m, m.tick()
			}
			if err := m.colony.EndExit(m.screen); err != nil {
				m.err = err
				m.state = stateError
				return m, nil
			}
			m.state = stateDone
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) step() error {
	if err := m.colony.Step(); err != nil {
		return err
	}
	return m.colony.Engine().Render(m.screen)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Abort):
		return m, tea.Quit
	case m.state == stateError:
		return m, nil
	case key.Matches(msg, keys.Quit):
		if m.state == stateRunning {
			m.state = stateExiting
			m.paused = false
			m.exitFrames = m.colony.BeginExit()
		}
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
		return m, nil
	case key.Matches(msg, keys.Next):
		m.selectNext()
		return m, nil
	case key.Matches(msg, keys.New):
		m.addWindow()
		return m, nil
	}

	if m.selected == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Left):
		m.desk.MoveBy(m.selected, -moveStep, 0)
	case key.Matches(msg, keys.Right):
		m.desk.MoveBy(m.selected, moveStep, 0)
	case key.Matches(msg, keys.Up):
		m.desk.MoveBy(m.selected, 0, -moveStep)
	case key.Matches(msg, keys.Down):
		m.desk.MoveBy(m.selected, 0, moveStep)
	case key.Matches(msg, keys.Raise):
		m.desk.Raise(m.selected)
	case key.Matches(msg, keys.Hide):
		if w, ok := m.desk.Window(m.selected); ok {
			m.desk.SetHidden(m.selected, !w.Hidden)
		}
	case key.Matches(msg, keys.Remove):
		m.desk.Remove(m.selected)
		m.selected = 0
		m.selectNext()
	}
	return m, nil
}

// selectNext cycles through the windows bottom to top.
func (m *model) selectNext() {
	windows := m.desk.Windows()
	if len(windows) == 0 {
		m.selected = 0
		return
	}
	for i, w := range windows {
		if w.ID == m.selected {
			m.selected = windows[(i+1)%len(windows)].ID
			return
		}
	}
	m.selected = windows[0].ID
}

func (m *model) addWindow() {
	dw, dh := m.colony.Engine().DisplaySize()
	n := len(m.desk.Windows()) + 1
	w := desktop.Window{
		Title: fmt.Sprintf("window %d", n),
		W:     dw / 4,
		H:     dh / 6,
	}
	// cascade new windows
	w.X = (n * 37) % max(dw-w.W, 1)
	w.Y = (n * 29) % max(dh-w.H, 1)
	m.selected = m.desk.Add(w)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)

	default:
		desk := m.renderDesktop()
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			desk,
			m.renderState(),
		)
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			helpStyle.Render(m.help.View(keys)),
		)
	}

	return s + "\n"
}

func (m model) renderDesktop() string {
	c := newCanvas(m.grid, m.colony.Theme().Classes)
	for _, w := range m.desk.Windows() {
		if w.Hidden {
			continue
		}
		c.window(w, w.ID == m.selected)
	}
	for _, s := range m.screen.shown {
		c.sprite(s)
	}
	return c.String()
}

func (m model) renderState() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TOONS") + "\n")
	fmt.Fprintf(&b, "Tick: %d\n", m.colony.Ticks())
	status := "running"
	switch {
	case m.state == stateExiting || m.state == stateDone:
		status = "exploding"
	case m.paused:
		status = "paused"
	}
	fmt.Fprintf(&b, "Status: %s\n\n", status)

	b.WriteString(titleStyle.Render("COLONY") + "\n")
	census := m.colony.Census()
	for i, cl := range m.colony.Theme().Classes {
		if census[i] == 0 {
			continue
		}
		fmt.Fprintf(&b, "%-10s %d\n", cl.Name, census[i])
	}
	fmt.Fprintf(&b, "%-10s %d\n\n", "total", m.colony.Active())

	b.WriteString(titleStyle.Render("WINDOWS") + "\n")
	eng := m.colony.Engine()
	solid := 0
	for _, w := range eng.Windows() {
		if w.Solid {
			solid++
		}
	}
	fmt.Fprintf(&b, "%d windows, %d solid\n", len(eng.Windows()), solid)
	if w, ok := m.desk.Window(m.selected); ok {
		fmt.Fprintf(&b, "> %s\n  %s\n", w.Title, w.Bounds())
	}

	return stateStyle.Width(panelWidth).Height(m.grid.rows).Render(b.String())
}

func Run(colony *penguins.Colony, desk *desktop.Desktop) error {
	p := tea.NewProgram(NewModel(colony, desk), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
