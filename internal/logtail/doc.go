// Package logtail styles dashboard log lines for the terminal viewer.
//
// # Overview
//
// Lines arrive from the log feed as opaque text, often with ANSI color codes
// already embedded by the server. The viewer re-styles them so they follow
// the active theme:
//
//  1. StripANSI removes server-side escape sequences
//  2. ParseLevel finds the first level token
//  3. Colorize renders prefix, level token, and message with lipgloss
//
// Expected log format:
//
//	[14:32:15] [Core] [INFO] [star.manager:123]: plugin loaded
//	2025-10-08 21:01:05 WARNING adapter reconnecting
//
// Both bracketed tokens ([INFO]) and bare words (INFO) are recognized.
// WARNING maps to WARN; CRIT, CRITICAL and FATAL map to LevelCritical.
//
// # Error Handling
//
// Nothing here returns errors. Lines without a recognizable level render
// in the base style rather than failing.
//
// # Design Rationale
//
// This package never modifies the buffer it is fed from; the viewer passes
// copies from a logstream.Snapshot. Filtering and search are left out.
package logtail
