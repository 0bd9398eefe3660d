// Package app provides the orchestration layer for streamtail.
//
// # Overview
//
// This package wires together configuration, logging, the dashboard SSE
// client, the bounded log buffer, and the UI. It is the composition root
// where all dependencies are initialized and connected.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config, apply flag overrides
//	       ├─────> logging.New()          File-backed zap logger
//	       ├─────> dashboard.NewClient()  SSE transport
//	       ├─────> logstream.New()        Bounded buffer
//	       ├─────> MarkSessionStart/Open  First subscription
//	       ├─────> StartReconnector()     Optional, reconnect_after > 0
//	       └─────> ui.Run()               Start TUI (blocks)
//
// # Reconnecting
//
// The buffer never retries on its own. When reconnect_after is set, the
// reconnector checks the buffer on that cadence and reopens it only after a
// transport failure, backing off exponentially up to 30 seconds. A stream
// the user disconnects from the viewer stays closed until the user
// reconnects it.
//
// # Errors
//
// Config, logging, and client construction errors are returned from Run.
// Stream failures are never returned; they show up in the viewer header and
// the diagnostic log.
package app
