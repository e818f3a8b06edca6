package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/state"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"0", "Dashboard"},
				{"1/2/3/4", "Categories/Products/Sales/Purchases"},
				{"L", "Application log"},
				{"tab", "Next view"},
				{"esc", "Back to dashboard"},
			},
		},
		{
			title: "Records",
			items: []helpItem{
				{"j/k", "Move up/down"},
				{"a", "Add"},
				{"e/enter", "Edit selected"},
				{"d", "Delete selected"},
				{"r", "Refresh"},
			},
		},
		{
			title: "Logs",
			items: []helpItem{
				{"space", "Toggle follow"},
				{"f", "Cycle level filter"},
				{"g/G", "Top/bottom"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"o", "Log out"},
				{"?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}

	if m.hasRole(state.RoleAdmin) {
		sections[0].items = append(sections[0].items, helpItem{"5", "Companies"})
		sections[1].items = append(sections[1].items, helpItem{"s", "Activate/deactivate company"})
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString("  ")
			b.WriteString(styles.WarningText.Render(padRight(item.key, 10)))
			b.WriteString(styles.MutedText.Render(item.desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.Dialog.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
