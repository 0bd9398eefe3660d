// Package logstream keeps a bounded, live tail of a server-sent log feed.
//
// # Overview
//
// A Buffer owns three pieces of session state:
//
//   - the ordered lines delivered by the feed, capped at MaxLines
//   - the session start time, an ISO-8601 string set by MarkSessionStart
//   - at most one active subscription to EndpointPath
//
// Collaborators such as the viewer receive the Buffer by injection and only
// read it through Lines, StartTime, and Snapshot. All mutation goes through
// Open, Close, and MarkSessionStart, or through the handlers a Source
// invokes on the Buffer's behalf.
//
// # Subscription Lifecycle
//
// The subscription state is binary:
//
//	inactive --Open--> active
//	active   --Open--> active   (old stream closed first)
//	active   --Close--> inactive
//	active   --transport error--> inactive
//	inactive --Close--> inactive (no-op)
//
// There is no automatic reconnect. After a transport error the feed stays
// silent until a caller invokes Open again.
//
// # Truncation
//
// Lines are appended in delivery order. When an append makes the buffer
// longer than MaxLines, it is cut down to the line just appended plus the
// KeepLines lines before it. Truncation happens in one batch rather than
// one eviction per line, so the length moves between KeepLines+1 and
// MaxLines once the feed has filled the buffer.
//
// # Sources
//
// A Source turns a path and a pair of handlers into a running Stream.
// Handlers may be called from any goroutine; the Buffer serializes them
// with its own calls. Each set of handlers is bound to the subscription
// that registered it, so a stream that keeps delivering after it was
// replaced or failed cannot touch the buffer.
package logstream
