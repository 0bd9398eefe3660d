package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/streamtail/internal/logtail"
)

// Rows taken by the header, the box borders, and the status line.
const chromeHeight = 4

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 0), max(m.height-chromeHeight, 0))
}

// updateLogViewport refreshes viewport content when the buffer changed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.Width = max(m.width-2, 0)
	m.logViewport.Height = max(m.height-chromeHeight, 0)

	if m.rendered && m.snapshot.Version == m.lastRendered {
		return
	}
	m.logViewport.SetContent(m.renderLogContent())
	m.rendered = true
	m.lastRendered = m.snapshot.Version

	if m.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent renders the styled log lines.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.snapshot.Lines) == 0 {
		if m.snapshot.Active {
			return styles.MutedText.Render("Waiting for log lines...")
		}
		return styles.MutedText.Render("No log entries")
	}
	return strings.Join(logtail.ColorizeLines(m.snapshot.Lines, m.theme.LogStyles()), "\n")
}

// renderLogs renders the boxed log viewport.
func (m Model) renderLogs() string {
	return m.theme.Styles().Box.
		Width(max(m.width-2, 0)).
		Render(m.logViewport.View())
}

// renderLogStatus renders the status line below the log box.
func (m Model) renderLogStatus() string {
	styles := m.theme.Styles()

	autoTail := "off"
	if m.follow {
		autoTail = "on"
	}
	parts := []string{
		styles.FaintText.Render(fmt.Sprintf("%d lines", len(m.snapshot.Lines))),
		styles.FaintText.Render(fmt.Sprintf("%d received", m.snapshot.Received)),
		styles.FaintText.Render("auto-tail " + autoTail),
	}
	if m.snapshot.Truncations > 0 {
		parts = append(parts, styles.WarningText.Render(fmt.Sprintf("trimmed %dx", m.snapshot.Truncations)))
	}
	if id := m.snapshot.SubscriptionID; id != "" {
		parts = append(parts, styles.MutedText.Render("sub "+shortID(id)))
	}
	if m.endpoint != "" {
		parts = append(parts, styles.AccentText.Render(m.endpoint))
	}
	return strings.Join(parts, styles.FaintText.Render(" • "))
}

// handleScrollKey processes navigation keys for the log viewport.
func (m Model) handleScrollKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.follow = false
	}
	return m, nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
