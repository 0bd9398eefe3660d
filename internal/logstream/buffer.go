package logstream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// EndpointPath is the server-sent event feed the buffer subscribes to.
	EndpointPath = "/api/log"
	// MaxLines is the most lines the buffer holds after any append completes.
	MaxLines = 1000
	// KeepLines is how many older lines survive a truncation, in addition
	// to the line that triggered it.
	KeepLines = 500
)

// isoMillis matches the ISO-8601 form used for session start times.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Handlers receive events from a push stream. OnData is called once per
// payload in delivery order; OnError is called at most once when the
// transport fails.
type Handlers struct {
	OnData  func(line string)
	OnError func(err error)
}

// Stream is a live subscription returned by a Source.
type Stream interface {
	// Close detaches the handlers and cancels the producer. It must not
	// block and must be safe to call more than once.
	Close()
}

// Source opens push streams against a server endpoint.
type Source interface {
	Open(path string, h Handlers) Stream
}

// Snapshot is a copy of the buffer state for renderers.
type Snapshot struct {
	Lines          []string
	StartTime      string
	Active         bool
	SubscriptionID string
	Received       uint64
	Truncations    uint64
	LastError      error
	Version        uint64
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLogger sets the diagnostic logger used for transport failures.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Buffer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock overrides the wall clock used by MarkSessionStart.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}

type subscription struct {
	id     string
	stream Stream
}

// Buffer owns at most one streaming subscription and the bounded list of
// lines it has delivered.
type Buffer struct {
	source Source
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	lines       []string
	startTime   string
	active      *subscription
	received    uint64
	truncations uint64
	lastErr     error
	version     uint64
}

// New builds a Buffer that opens its subscriptions through source.
func New(source Source, opts ...Option) *Buffer {
	b := &Buffer{
		source: source,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open replaces any active subscription with a new one against
// EndpointPath. Failures surface only through the diagnostic logger and
// Snapshot.LastError.
func (b *Buffer) Open() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closeLocked()

	id := uuid.NewString()
	sub := &subscription{id: id}
	b.active = sub
	b.lastErr = nil
	b.version++

	h := Handlers{
		OnData:  func(line string) { b.deliver(id, line) },
		OnError: func(err error) { b.fail(id, err) },
	}
	// Sources may invoke handlers before Open returns.
	b.mu.Unlock()
	stream := b.source.Open(EndpointPath, h)
	b.mu.Lock()

	if b.active == sub {
		sub.stream = stream
		b.logger.Debug("log stream opened", zap.String("subscription", id))
		return
	}
	// Replaced or failed while opening.
	if stream != nil {
		stream.Close()
	}
}

// Close tears down the active subscription, if any.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeLocked() {
		b.version++
	}
}

func (b *Buffer) closeLocked() bool {
	if b.active == nil {
		return false
	}
	if b.active.stream != nil {
		b.active.stream.Close()
	}
	b.logger.Debug("log stream closed", zap.String("subscription", b.active.id))
	b.active = nil
	return true
}

// MarkSessionStart records the current wall-clock time as the session start.
func (b *Buffer) MarkSessionStart() {
	ts := b.now().UTC().Format(isoMillis)
	b.mu.Lock()
	b.startTime = ts
	b.version++
	b.mu.Unlock()
}

// Lines returns a copy of the buffered lines in arrival order.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneLines(b.lines)
}

// StartTime returns the session start timestamp, or "" before the first
// MarkSessionStart.
func (b *Buffer) StartTime() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startTime
}

// Active reports whether a subscription is currently open.
func (b *Buffer) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// LastError returns the transport failure that ended the most recent
// subscription. It is cleared by Open.
func (b *Buffer) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Snapshot returns a copy of the current state.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Lines:       cloneLines(b.lines),
		StartTime:   b.startTime,
		Active:      b.active != nil,
		Received:    b.received,
		Truncations: b.truncations,
		LastError:   b.lastErr,
		Version:     b.version,
	}
	if b.active != nil {
		snap.SubscriptionID = b.active.id
	}
	return snap
}

func (b *Buffer) deliver(id, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil || b.active.id != id {
		return
	}
	b.lines = appendBounded(b.lines, line, &b.truncations)
	b.received++
	b.version++
}

func (b *Buffer) fail(id string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil || b.active.id != id {
		return
	}
	b.logger.Error("log stream failed", zap.String("subscription", id), zap.Error(err))
	if b.active.stream != nil {
		b.active.stream.Close()
	}
	b.active = nil
	b.lastErr = err
	b.version++
}

// appendBounded appends line and, once the result exceeds MaxLines, keeps
// only the KeepLines lines before line plus line itself.
func appendBounded(lines []string, line string, truncations *uint64) []string {
	lines = append(lines, line)
	if len(lines) <= MaxLines {
		return lines
	}
	kept := make([]string, KeepLines+1, MaxLines+1)
	copy(kept, lines[len(lines)-KeepLines-1:])
	*truncations++
	return kept
}

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]string, len(lines))
	copy(dup, lines)
	return dup
}
