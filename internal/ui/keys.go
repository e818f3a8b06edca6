package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings outside of text entry.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logout     key.Binding
	Escape     key.Binding

	Dashboard  key.Binding
	Categories key.Binding
	Products   key.Binding
	Sales      key.Binding
	Purchases  key.Binding
	Companies  key.Binding
	Logs       key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding

	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	Follow key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Logout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Log out"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to dashboard"),
		),

		Dashboard: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Dashboard"),
		),
		Categories: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Categories"),
		),
		Products: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Products"),
		),
		Sales: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Sales"),
		),
		Purchases: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Purchases"),
		),
		Companies: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Companies"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Logs"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "Edit selected"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete selected"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Activate/deactivate company"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "Cancel"),
		),

		Follow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle follow"),
		),
	}
}
