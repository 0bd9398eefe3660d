package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings streamtail needs to reach the dashboard.
type Config struct {
	DashboardAddr  string
	Token          string
	LogLevel       string
	LogFile        string
	ReconnectAfter time.Duration
}

const (
	defaultConfigPath    = "~/.config/streamtail/config.toml"
	defaultLogFile       = "~/.local/state/streamtail/streamtail.log"
	defaultDashboardAddr = "127.0.0.1:6185"
	defaultLogLevel      = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DashboardAddr: defaultDashboardAddr,
		LogLevel:      defaultLogLevel,
		LogFile:       mustExpand(defaultLogFile),
	}
}

// Load locates and parses the streamtail config, falling back to defaults
// when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DashboardAddr  string `toml:"dashboard_addr"`
		Token          string `toml:"token"`
		LogLevel       string `toml:"log_level"`
		LogFile        string `toml:"log_file"`
		ReconnectAfter string `toml:"reconnect_after"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if addr := strings.TrimSpace(raw.DashboardAddr); addr != "" {
		cfg.DashboardAddr = addr
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = expandLogFile(logFile)
	}
	if cfg.ReconnectAfter, err = ParseInterval(raw.ReconnectAfter); err != nil {
		return Config{}, fmt.Errorf("parse config: reconnect_after: %w", err)
	}

	return cfg, nil
}

// ParseInterval parses a duration string such as "5s". Empty means zero.
func ParseInterval(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval %q", trimmed)
	}
	return d, nil
}

func expandLogFile(path string) string {
	if path == "-" {
		return path
	}
	return mustExpand(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
