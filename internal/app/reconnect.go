package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Reopener is the part of logstream.Buffer the reconnector needs.
type Reopener interface {
	Open()
	Active() bool
	LastError() error
}

// StartReconnector launches a background goroutine that reopens the stream
// after it failed. A buffer closed on purpose has no LastError and is left
// alone. Consecutive failures back off exponentially up to maxBackoff.
// It returns immediately; a non-positive interval disables it.
func StartReconnector(ctx context.Context, buffer Reopener, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 || buffer == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			failures = reconnectOnce(buffer, failures, logger)
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// reconnectOnce reopens a failed buffer and returns the updated failure count.
func reconnectOnce(buffer Reopener, failures int, logger *zap.Logger) int {
	if buffer.Active() {
		return 0
	}
	err := buffer.LastError()
	if err == nil {
		return 0
	}
	failures++
	logger.Info("reopening log stream",
		zap.Int("attempt", failures),
		zap.NamedError("last_error", err),
	)
	buffer.Open()
	return failures
}

// calculateBackoff doubles interval once per failure, capped at maxBackoff
// or interval, whichever is larger.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	limit := max(maxBackoff, interval)
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	return backoff
}
