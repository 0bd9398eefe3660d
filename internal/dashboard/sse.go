package dashboard

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const (
	initialLineBytes = 64 * 1024
	// MaxLineBytes caps a single SSE line. Longer lines stop the scanner
	// with bufio.ErrTooLong.
	MaxLineBytes = 1024 * 1024
)

// Event is one server-sent event.
type Event struct {
	Type string
	Data string
}

// SSEScanner reads server-sent events from a reader. Lines end at CR, LF,
// or CRLF. Events end at a blank line; multiple data lines are joined with
// "\n". Comment lines and fields other than data and event are ignored.
// An event still open when the stream ends is discarded.
type SSEScanner struct {
	scanner *bufio.Scanner
	current Event
	done    bool
}

// NewSSEScanner wraps r.
func NewSSEScanner(r io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBytes), MaxLineBytes)
	scanner.Split(scanLines)
	return &SSEScanner{scanner: scanner}
}

// Next advances to the next complete event and reports whether one was
// read. After it returns false, Err distinguishes a clean EOF from a read
// error.
func (s *SSEScanner) Next() bool {
	if s.done {
		return false
	}
	s.current = Event{}

	var data []string
	var eventType string
	hasData := false

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if hasData {
				s.current = Event{Type: eventType, Data: strings.Join(data, "\n")}
				return true
			}
			eventType = ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if ok {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			eventType = value
		}
	}

	s.done = true
	return false
}

// Event returns the event read by the last successful Next.
func (s *SSEScanner) Event() Event {
	return s.current
}

// Err returns the error that stopped the scanner, or nil at EOF.
func (s *SSEScanner) Err() error {
	return s.scanner.Err()
}

// scanLines is a bufio.SplitFunc for SSE line endings. A CR at the end of
// the buffered data waits for more input so CRLF is not read as two
// terminators. An unterminated final line is dropped.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	return 0, nil, nil
}
