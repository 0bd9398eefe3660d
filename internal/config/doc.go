// Package config loads streamtail's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/streamtail/config.toml
//  3. If the file doesn't exist, use defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - Dashboard address: 127.0.0.1:6185
//   - Log level: info
//   - Log file: ~/.local/state/streamtail/streamtail.log
//   - Reconnect: disabled
//
// # TOML Format
//
//	dashboard_addr = "127.0.0.1:6185"
//	token = "..."
//	log_level = "info"
//	log_file = "~/.local/state/streamtail/streamtail.log"  # "-" for stderr
//	reconnect_after = "10s"
//
// All fields are optional. Values are trimmed and tilde-expanded where they
// name paths.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors, and invalid reconnect_after durations.
// Parse failures mention "parse config".
package config
