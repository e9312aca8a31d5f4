package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	nextCategory key.Binding
	prevCategory key.Binding
	launch       key.Binding
	quit         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextCategory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next category"),
		),
		prevCategory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous category"),
		),
		launch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "launch"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.launch, k.nextCategory, k.prevCategory}
}
