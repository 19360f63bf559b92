package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	StartDay key.Binding
	EndDay   key.Binding
	Project  key.Binding
	EndProj  key.Binding
	Break    key.Binding
	Continue key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	StartDay: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start day")),
	EndDay:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end day")),
	Project:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "start project")),
	EndProj:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "end project")),
	Break:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break")),
	Continue: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "continue")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh:  key.NewBinding(key.WithKeys("R", "r"), key.WithHelp("R", "refresh")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
