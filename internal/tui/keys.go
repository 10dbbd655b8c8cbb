package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next   key.Binding
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Raise  key.Binding
	New    key.Binding
	Hide   key.Binding
	Remove key.Binding
	Pause  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Abort  key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select window")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Raise:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raise")),
	New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new window")),
	Hide:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "map/unmap")),
	Remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
	Pause:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "explode and quit")),
	Abort:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit now")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.Right, k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Left, k.Right, k.Up, k.Down},
		{k.Raise, k.New, k.Hide, k.Remove},
		{k.Pause, k.Help, k.Quit, k.Abort},
	}
}
