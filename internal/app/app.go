package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/five82/streamtail/internal/config"
	"github.com/five82/streamtail/internal/dashboard"
	"github.com/five82/streamtail/internal/logging"
	"github.com/five82/streamtail/internal/logstream"
	"github.com/five82/streamtail/internal/prefs"
	"github.com/five82/streamtail/internal/ui"
)

// Options configure the streamtail application. Non-empty fields override
// the config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/streamtail/prefs.toml
	Addr       string
	Token      string
	Reconnect  string // duration such as "5s"; "0" disables
	LogFile    string
	LogLevel   string
}

// Run boots the streamtail viewer until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	if err := checkLogOutput(cfg.LogFile, isatty.IsTerminal(os.Stderr.Fd())); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync(logger)

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := dashboard.NewClient(cfg.DashboardAddr, cfg.Token, logger.Named("dashboard"))
	if err != nil {
		return fmt.Errorf("init dashboard client: %w", err)
	}

	sess := newSession(logstream.New(client, logstream.WithLogger(logger.Named("logstream"))))
	sess.MarkSessionStart()
	sess.Open()
	defer sess.Close()

	logger.Info("streamtail started",
		zap.String("endpoint", client.BaseURL()+logstream.EndpointPath),
		zap.Duration("reconnect_after", cfg.ReconnectAfter),
	)

	StartReconnector(ctx, sess, cfg.ReconnectAfter, logger.Named("reconnect"))

	return ui.Run(ui.Options{
		Context:   ctx,
		Buffer:    sess,
		Endpoint:  client.BaseURL() + logstream.EndpointPath,
		ThemeName: userPrefs.Theme,
		Follow:    userPrefs.FollowEnabled(),
		PrefsPath: opts.PrefsPath,
		Logger:    logger.Named("ui"),
	})
}

// resolveConfig loads the config file and applies overrides from opts.
func resolveConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.DashboardAddr = addr
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		cfg.Token = token
	}
	if logFile := strings.TrimSpace(opts.LogFile); logFile != "" {
		cfg.LogFile = logFile
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if strings.TrimSpace(opts.Reconnect) != "" {
		d, err := config.ParseInterval(opts.Reconnect)
		if err != nil {
			return config.Config{}, fmt.Errorf("parse reconnect interval: %w", err)
		}
		cfg.ReconnectAfter = d
	}
	return cfg, nil
}

// errLogToTerminal is returned when diagnostics would be written over the
// full-screen viewer.
var errLogToTerminal = errors.New(`log_file "-" writes to stderr, which is the viewer's terminal; redirect stderr or choose a file`)

// checkLogOutput rejects stderr logging while stderr is the terminal.
func checkLogOutput(logFile string, stderrIsTerminal bool) error {
	switch strings.TrimSpace(logFile) {
	case "", logging.Stderr:
		if stderrIsTerminal {
			return errLogToTerminal
		}
	}
	return nil
}

// session wraps a Buffer so a stream the user closed is not reopened by the
// reconnector until the user opens it again.
type session struct {
	*logstream.Buffer
	held atomic.Bool
}

func newSession(buffer *logstream.Buffer) *session {
	return &session{Buffer: buffer}
}

func (s *session) Open() {
	s.held.Store(false)
	s.Buffer.Open()
}

func (s *session) Close() {
	s.held.Store(true)
	s.Buffer.Close()
}

// LastError reports nil while the stream is held closed.
func (s *session) LastError() error {
	if s.held.Load() {
		return nil
	}
	return s.Buffer.LastError()
}

var (
	_ ui.Controller = (*session)(nil)
	_ Reopener      = (*session)(nil)
)
