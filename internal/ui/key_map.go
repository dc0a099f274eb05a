package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	pane    key.Binding
	play    key.Binding
	remove  key.Binding
	edit    key.Binding
	refresh key.Binding
	quit    key.Binding

	setIntro key.Binding
	setVocal key.Binding
	setAux   key.Binding
	goIntro  key.Binding
	goVocal  key.Binding
	goAux    key.Binding
	zoomIn   key.Binding
	zoomOut  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick up/drop")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		pane:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit markers")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		setIntro: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "set intro")),
		setVocal: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "set vox")),
		setAux:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "set aux")),
		goIntro:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "go to intro")),
		goVocal:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "go to vox")),
		goAux:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "go to aux")),
		zoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.pane},
		{k.play, k.remove, k.edit, k.refresh},
		{k.back, k.quit},
	}
}
