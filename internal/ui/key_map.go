package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	like    key.Binding
	remove  key.Binding
	add     key.Binding
	liked   key.Binding
	back    key.Binding
	pick    key.Binding
	forward key.Binding
	rewind  key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "play/pause")),
		like:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		remove:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add files")),
		liked:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		back:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back to playlist")),
		pick:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add file")),
		forward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek forward")),
		rewind:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek back")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.like, k.add, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.rewind, k.forward},
		{k.like, k.liked, k.remove},
		{k.add, k.help, k.quit},
	}
}
