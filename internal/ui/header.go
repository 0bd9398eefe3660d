package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logoText = "streamtail"

// connectionLabel describes the subscription state for the header.
func (m Model) connectionLabel() (string, lipgloss.Style) {
	styles := m.theme.Styles()
	switch {
	case m.snapshot.Active:
		return "● live", styles.SuccessText
	case m.snapshot.LastError != nil:
		return "✕ stream error", styles.DangerText
	default:
		return "○ disconnected", styles.MutedText
	}
}

// renderHeader renders the one-line header bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	label, labelStyle := m.connectionLabel()
	parts := []string{
		styles.Logo.Render(logoText),
		labelStyle.Render(label),
	}

	if start := m.snapshot.StartTime; start != "" {
		parts = append(parts, styles.MutedText.Render("session "+formatStart(start)))
	} else {
		parts = append(parts, styles.FaintText.Render("session not started"))
	}

	if err := m.snapshot.LastError; err != nil && !m.snapshot.Active {
		parts = append(parts, styles.DangerText.Render(truncate(err.Error(), max(m.width/2, 20))))
	}

	parts = append(parts, styles.FaintText.Render("? help"))

	line := strings.Join(parts, "  ")
	return styles.Header.Width(max(m.width, 0)).MaxHeight(1).Render(line)
}

// formatStart shows an ISO-8601 start time in local time when it parses.
func formatStart(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
