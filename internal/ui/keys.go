package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left        key.Binding
	Right       key.Binding
	ExtendLeft  key.Binding
	ExtendRight key.Binding
	Lookup      key.Binding
	LookupAll   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev word"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next word"),
		),
		ExtendLeft: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("⇧←/H", "extend left"),
		),
		ExtendRight: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("⇧→/L", "extend right"),
		),
		Lookup: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "look up selection"),
		),
		LookupAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "look up whole line"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Lookup, k.LookupAll, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.ExtendLeft, k.ExtendRight},
		{k.Lookup, k.LookupAll},
		{k.Help, k.Quit},
	}
}
