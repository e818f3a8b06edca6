package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stockroom/internal/logtail"
)

// logState holds the logs view: the tail of the application log file.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	minLevel    string // "", "WARN" or "ERROR"
	err         error
	lastRefresh time.Time
	viewport    viewport.Model
}

func newLogState() logState {
	return logState{follow: true, viewport: viewport.New(80, 20)}
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return logsMsg{}
		}
		entries, err := logtail.ReadEntries(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logs.err = msg.err
	if msg.err == nil {
		m.logs.entries = msg.entries
	}
	m.logs.lastRefresh = time.Now()
	m.logs.render()
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3, "DPANIC": 4, "PANIC": 4, "FATAL": 4}

// visible applies the level filter.
func (s logState) visible() []logtail.Entry {
	if s.minLevel == "" {
		return s.entries
	}
	floor := levelRank[s.minLevel]
	out := make([]logtail.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		rank, ok := levelRank[e.Level]
		if !ok || rank >= floor {
			out = append(out, e)
		}
	}
	return out
}

func (s *logState) render() {
	entries := s.visible()
	lines := make([]string, 0, len(entries))
	width := s.viewport.Width
	for _, e := range entries {
		lines = append(lines, truncate(e.Format(), max(width, 20)))
	}
	s.viewport.SetContent(strings.Join(lines, "\n"))
}

func (s *logState) cycleLevel() {
	switch s.minLevel {
	case "":
		s.minLevel = "WARN"
	case "WARN":
		s.minLevel = "ERROR"
	default:
		s.minLevel = ""
	}
	s.render()
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Follow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
		}
		return m, nil
	case msg.String() == "f":
		m.logs.cycleLevel()
		return m, nil
	case msg.String() == "g", msg.String() == "home":
		m.logs.follow = false
		m.logs.viewport.GotoTop()
		return m, nil
	case msg.String() == "G", msg.String() == "end":
		m.logs.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	if !m.logs.viewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if m.logs.err != nil {
		return styles.DangerText.Render("  " + m.logs.err.Error())
	}
	if strings.TrimSpace(m.logPath) == "" {
		return styles.MutedText.Render("  Logging is disabled (log_file is empty).")
	}
	if len(m.logs.entries) == 0 {
		return styles.MutedText.Render("  No log entries in " + truncate(m.logPath, 60))
	}
	header := styles.MutedText.Render(truncate(m.logPath, 60))
	if m.logs.minLevel != "" {
		header += "  " + styles.Badge("low", m.logs.minLevel+"+")
	}
	return header + "\n" + m.logs.viewport.View()
}
