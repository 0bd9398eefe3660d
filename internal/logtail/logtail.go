package logtail

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity detected in a log line.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return ""
	}
}

var (
	ansiPattern  = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	levelPattern = regexp.MustCompile(`\[(DEBUG|INFO|WARN|WARNING|ERRO|ERROR|CRIT|CRITICAL|FATAL)\]|\b(DEBUG|INFO|WARN|WARNING|ERROR|CRITICAL|FATAL)\b`)
)

// Styles maps levels to lipgloss styles.
type Styles struct {
	Base     lipgloss.Style
	Prefix   lipgloss.Style
	Debug    lipgloss.Style
	Info     lipgloss.Style
	Warn     lipgloss.Style
	Error    lipgloss.Style
	Critical lipgloss.Style
}

func (s Styles) forLevel(l Level) lipgloss.Style {
	switch l {
	case LevelDebug:
		return s.Debug
	case LevelInfo:
		return s.Info
	case LevelWarn:
		return s.Warn
	case LevelError:
		return s.Error
	case LevelCritical:
		return s.Critical
	default:
		return s.Base
	}
}

// StripANSI removes terminal escape sequences.
func StripANSI(line string) string {
	if !strings.Contains(line, "\x1b") {
		return line
	}
	return ansiPattern.ReplaceAllString(line, "")
}

// ParseLevel returns the first level token found in line.
func ParseLevel(line string) Level {
	level, _, _ := findLevel(StripANSI(line))
	return level
}

func findLevel(line string) (Level, int, int) {
	loc := levelPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return LevelUnknown, -1, -1
	}
	var token string
	switch {
	case loc[2] >= 0:
		token = line[loc[2]:loc[3]]
	default:
		token = line[loc[4]:loc[5]]
	}
	return levelFromToken(token), loc[0], loc[1]
}

func levelFromToken(token string) Level {
	switch token {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERRO", "ERROR":
		return LevelError
	case "CRIT", "CRITICAL", "FATAL":
		return LevelCritical
	default:
		return LevelUnknown
	}
}

// Colorize renders line for display: the text before the level token is
// muted, the token takes the level style, and the message keeps the base
// style unless the level is error or worse.
func Colorize(line string, styles Styles) string {
	plain := StripANSI(line)
	if strings.TrimSpace(plain) == "" {
		return plain
	}
	level, start, end := findLevel(plain)
	if level == LevelUnknown {
		return styles.Base.Render(plain)
	}

	msgStyle := styles.Base
	if level >= LevelError {
		msgStyle = styles.forLevel(level)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(styles.Prefix.Render(plain[:start]))
	}
	b.WriteString(styles.forLevel(level).Bold(true).Render(plain[start:end]))
	if end < len(plain) {
		b.WriteString(msgStyle.Render(plain[end:]))
	}
	return b.String()
}

// ColorizeLines applies Colorize to each line.
func ColorizeLines(lines []string, styles Styles) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Colorize(line, styles)
	}
	return out
}
