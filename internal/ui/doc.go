// Package ui renders a logstream.Buffer as a terminal log tail using
// Bubble Tea.
//
// # Layout
//
//   - header.go: one-line header with connection state, session start,
//     and the last stream error
//   - logs.go: the boxed log viewport, status line, and scroll keys
//   - help.go: the keyboard shortcut overlay
//   - keys.go: key bindings
//   - theme.go: color themes and the log level styles they produce
//
// # Refresh Model
//
// The model never touches the buffer's lines directly. A tick every
// RefreshEvery (250ms by default) fetches a Snapshot, and the viewport is
// re-rendered only when the snapshot Version changed. With follow mode on,
// the viewport stays pinned to the newest line; scrolling up turns it off
// and G turns it back on.
//
// # Stream Control
//
//   - r: open a new subscription, replacing any active one
//   - x: close the subscription
//   - s: mark a new session start time
//
// Theme and follow mode are saved to prefs.toml whenever they change.
package ui
