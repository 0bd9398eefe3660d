// Package dashboard streams the bot dashboard's live log feed over HTTP.
//
// # Overview
//
// The dashboard publishes its log output as a server-sent event stream at
// /api/log. Client implements logstream.Source on top of that endpoint: Open
// issues a long-lived GET request in a background goroutine and hands each
// event's data payload to the registered handlers.
//
// # Wire Format
//
// SSEScanner parses the text/event-stream framing:
//
//	event: log
//	data: [14:32:15] [Core] [INFO] [main:42]: plugin loaded
//
//	: keepalive comment, ignored
//
// Events end at a blank line. Several data lines in one event are joined
// with a newline. Payloads are passed on verbatim: no ANSI stripping,
// trimming, or JSON decoding happens here.
//
// # Failure Reporting
//
// A stream reports at most one failure, as a *StreamError:
//
//   - the request could not be sent (connection refused, DNS, timeout)
//   - the server answered with a non-2xx status (StatusCode is set)
//   - reading the body failed
//   - the server ended the stream (wraps ErrStreamClosed)
//
// There is no retry. Closing a stream cancels its request; a stream closed
// by the caller never reports a failure.
//
// # Authentication
//
// When a token is configured it is sent as "Authorization: Bearer <token>".
//
// # Timeouts
//
// Streams are open-ended, so the HTTP client has no overall timeout. Dialing
// is bounded at 5s and waiting for response headers at 10s.
package dashboard
