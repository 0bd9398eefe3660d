package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/streamtail/internal/logstream"
	"github.com/five82/streamtail/internal/prefs"
)

// Controller is the part of logstream.Buffer the viewer drives.
type Controller interface {
	Snapshot() logstream.Snapshot
	Open()
	Close()
	MarkSessionStart()
}

var _ Controller = (*logstream.Buffer)(nil)

const defaultRefreshEvery = 250 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context      context.Context
	Buffer       Controller
	Endpoint     string
	RefreshEvery time.Duration
	ThemeName    string
	Follow       bool
	PrefsPath    string
	Logger       *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	buffer       Controller
	endpoint     string
	refreshEvery time.Duration
	prefsPath    string
	logger       *zap.Logger
	keys         keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Log state
	logViewport  viewport.Model
	follow       bool
	snapshot     logstream.Snapshot
	rendered     bool
	lastRendered uint64
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = defaultRefreshEvery
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		buffer:       opts.Buffer,
		endpoint:     opts.Endpoint,
		refreshEvery: refresh,
		prefsPath:    prefsPath,
		logger:       logger,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(themeName),
		follow:       opts.Follow,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refreshEvery)}
	if m.buffer != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.buffer))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.rendered = false
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.buffer != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.buffer))
		}
		cmds = append(cmds, tickCmd(m.refreshEvery))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = logstream.Snapshot(msg)
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	b.WriteString("\n")
	b.WriteString(m.renderLogStatus())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.rendered = false
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Reconnect):
		if m.buffer == nil {
			return m, nil
		}
		m.buffer.Open()
		m.logger.Info("log stream reopened from viewer")
		return m, fetchSnapshotCmd(m.buffer)

	case key.Matches(msg, m.keys.Disconnect):
		if m.buffer == nil {
			return m, nil
		}
		m.buffer.Close()
		return m, fetchSnapshotCmd(m.buffer)

	case key.Matches(msg, m.keys.NewSession):
		if m.buffer == nil {
			return m, nil
		}
		m.buffer.MarkSessionStart()
		return m, fetchSnapshotCmd(m.buffer)

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
		}
		m.savePrefs()
		return m, nil
	}

	return m.handleScrollKey(msg)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}.WithFollow(m.follow)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg logstream.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(buffer Controller) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(buffer.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
