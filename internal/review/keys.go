package review

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Accept   key.Binding
	Reject   key.Binding
	Comment  key.Binding
	Pane     key.Binding
	Errors   key.Binding
	Warnings key.Binding
	All      key.Binding
	Category key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("n", "j", "down"), key.WithHelp("n/j", "next")),
		Prev:     key.NewBinding(key.WithKeys("p", "k", "up"), key.WithHelp("p/k", "previous")),
		Accept:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Reject:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Comment:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "comment")),
		Pane:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Errors:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "errors only")),
		Warnings: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warnings+")),
		All:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "all severities")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle category")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Accept, k.Reject, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Pane},
		{k.Accept, k.Reject, k.Comment},
		{k.Errors, k.Warnings, k.All, k.Category},
		{k.Help, k.Quit},
	}
}
