package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: role, sync state and last refresh.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	compact := m.width < LayoutCompactWidth
	snap := m.snapshot

	parts := []string{styles.Logo.Render("stockroom")}
	if m.prefs.User != "" && !compact {
		parts = append(parts, styles.Text.Render(m.prefs.User))
	}
	if role := strings.TrimSpace(m.role); role != "" {
		parts = append(parts, styles.Badge(role, strings.ToUpper(role)))
	}

	switch {
	case snap.IsOffline():
		parts = append(parts, styles.Badge("offline", "OFFLINE"),
			styles.DangerText.Render(classifyConnectionError(snap.LastError)))
	case snap.Loading():
		parts = append(parts, styles.Badge("loading", "SYNCING"))
	default:
		parts = append(parts, styles.Badge("ready", "READY"))
	}

	if !snap.LastRefresh.IsZero() {
		ts := snap.LastRefresh.Format("15:04:05")
		if !compact {
			ts += fmt.Sprintf(" (%s ago)", humanizeDuration(time.Since(snap.LastRefresh)))
		}
		parts = append(parts, styles.MutedText.Render(ts))
	}
	if !compact {
		parts = append(parts, styles.FaintText.Render(truncate(m.client.BaseURL(), 40)))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Padding(0, 1).
		Render(strings.Join(filterStrings(parts), "  "))
}

// renderTabs renders the view selector.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := m.visibleTabs()
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.title()
		if v, ok := m.views[t]; ok {
			st := v.status(m.snapshot)
			if st.Loaded {
				label = fmt.Sprintf("%s (%d)", label, st.Count)
			}
		}
		if t == m.current {
			parts = append(parts, styles.TabOn.Render(label))
		} else {
			parts = append(parts, styles.TabOff.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// renderFooter shows the focused collection's lifecycle or the last toast.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var left string
	switch {
	case m.toast != "" && m.toastErr:
		left = styles.DangerText.Render(m.toast)
	case m.toast != "":
		left = styles.SuccessText.Render(m.toast)
	default:
		left = m.collectionLine(styles)
	}

	right := styles.FaintText.Render("? help  a add  e edit  d delete  r refresh  o logout")
	if m.width < LayoutCompactWidth {
		right = styles.FaintText.Render("? help")
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	line := left + strings.Repeat(" ", gap) + right
	return styles.Footer.Width(m.width).Render(line)
}

func (m Model) collectionLine(styles Styles) string {
	v, ok := m.views[m.current]
	if !ok {
		if m.current == tabLogs {
			mode := "paused"
			if m.logs.follow {
				mode = "following"
			}
			return styles.MutedText.Render(fmt.Sprintf("%d lines, %s", len(m.logs.entries), mode))
		}
		if err := m.snapshot.LastError; err != nil {
			return styles.DangerText.Render(truncate(describeError(err), 80))
		}
		return styles.MutedText.Render("dashboard")
	}

	st := v.status(m.snapshot)
	switch {
	case st.Loading:
		return styles.Badge("loading", "LOADING") + " " + styles.MutedText.Render(m.current.String())
	case st.Err != nil:
		return styles.Badge("error", "ERROR") + " " + styles.DangerText.Render(truncate(describeError(st.Err), 80))
	case !st.Loaded:
		return styles.MutedText.Render(m.current.String() + " not loaded")
	}
	text := fmt.Sprintf("%d %s", st.Count, m.current.String())
	if !st.Updated.IsZero() {
		text += ", updated " + humanizeDuration(time.Since(st.Updated)) + " ago"
	}
	return styles.MutedText.Render(text)
}
