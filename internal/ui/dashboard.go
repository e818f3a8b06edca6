package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stockroom/internal/state"
)

func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	d := m.snapshot.Dashboard()

	card := func(title, value, kind string) string {
		body := styles.MutedText.Render(title) + "\n" + styles.Text.Bold(true).Render(value)
		if kind != "" {
			body += "\n" + styles.Badge(kind, strings.ToUpper(kind))
		}
		return styles.Panel.Width(22).Render(body)
	}

	var parts []string
	if m.hasRole(state.RoleAdmin) {
		inactiveKind := ""
		if d.Companies > d.ActiveCompanies {
			inactiveKind = "disabled"
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
			card("Total companies", fmt.Sprint(d.Companies), ""),
			card("Active companies", fmt.Sprint(d.ActiveCompanies), ""),
			card("Disabled", fmt.Sprint(d.Companies-d.ActiveCompanies), inactiveKind),
		))
	}
	if m.hasRole(state.RoleCompany) || !m.hasRole(state.RoleAdmin) {
		parts = append(parts, m.inventoryCards(card, d)...)
	}
	if err := m.snapshot.LastError; err != nil {
		parts = append(parts, styles.DangerText.Render("Last refresh: ")+styles.MutedText.Render(truncate(err.Error(), 120)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) inventoryCards(card func(title, value, kind string) string, d state.Dashboard) []string {
	styles := m.theme.Styles()
	counts := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Categories", fmt.Sprint(d.Categories), ""),
		card("Products", fmt.Sprint(d.Products), ""),
		card("Sales", fmt.Sprint(d.Sales), ""),
		card("Purchases", fmt.Sprint(d.Purchases), ""),
	)

	lowKind := ""
	if d.LowStock > 0 {
		lowKind = "low"
	}
	money := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Sales total", formatMoney(d.SalesTotal), ""),
		card("Purchases total", formatMoney(d.PurchasesTotal), ""),
		card("Units in stock", fmt.Sprint(d.StockUnits), ""),
		card(fmt.Sprintf("Qty <= %d", state.LowStockThreshold), fmt.Sprint(d.LowStock), lowKind),
	)

	parts := []string{counts, money}
	if low := m.lowStockLines(styles, 8); low != "" {
		parts = append(parts, styles.WarningText.Render("Low stock")+"\n"+low)
	}
	return parts
}

func (m Model) lowStockLines(styles Styles, limit int) string {
	var lines []string
	for _, p := range m.snapshot.Products.Items {
		if p.Qty > state.LowStockThreshold {
			continue
		}
		if len(lines) == limit {
			lines = append(lines, styles.FaintText.Render("  ..."))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			styles.Text.Render(truncate(p.Name, 30)),
			styles.MutedText.Render(p.SKU),
			styles.WarningText.Render(fmt.Sprintf("qty %d", p.Qty))))
	}
	return strings.Join(lines, "\n")
}
