package dashboard

import (
	"bufio"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(t *testing.T, s *SSEScanner) []Event {
	t.Helper()
	var events []Event
	for s.Next() {
		events = append(events, s.Event())
	}
	return events
}

func TestSSEScanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{
			name:  "single data line",
			input: "data: hello\n\n",
			want:  []Event{{Data: "hello"}},
		},
		{
			name:  "event type and several events",
			input: "event: log\ndata: one\n\nevent: log\ndata: two\n\n",
			want:  []Event{{Type: "log", Data: "one"}, {Type: "log", Data: "two"}},
		},
		{
			name:  "multiple data lines joined",
			input: "data: first\ndata: second\n\n",
			want:  []Event{{Data: "first\nsecond"}},
		},
		{
			name:  "comments and unknown fields ignored",
			input: ": keepalive\nid: 7\nretry: 1000\nfoo: bar\ndata: payload\n\n",
			want:  []Event{{Data: "payload"}},
		},
		{
			name:  "only one leading space stripped",
			input: "data:  indented\ndata:tight\n\n",
			want:  []Event{{Data: " indented\ntight"}},
		},
		{
			name:  "crlf line endings",
			input: "data: a\r\n\r\ndata: b\r\n\r\n",
			want:  []Event{{Data: "a"}, {Data: "b"}},
		},
		{
			name:  "blank blocks without data skipped",
			input: "\n\nevent: ping\n\ndata: x\n\n",
			want:  []Event{{Data: "x"}},
		},
		{
			name:  "bare cr line endings",
			input: "data: a\r\rdata: b\r\r",
			want:  []Event{{Data: "a"}, {Data: "b"}},
		},
		{
			name:  "mixed line endings",
			input: "data: one\r\ndata: two\rdata: three\n\r\n",
			want:  []Event{{Data: "one\ntwo\nthree"}},
		},
		{
			name:  "unterminated event dropped at eof",
			input: "data: done\n\ndata: partial\n",
			want:  []Event{{Data: "done"}},
		},
		{
			name:  "unterminated line dropped at eof",
			input: "data: a\n\ndata: tail",
			want:  []Event{{Data: "a"}},
		},
		{
			name:  "empty data line",
			input: "data\n\n",
			want:  []Event{{Data: ""}},
		},
		{
			name:  "ansi payload kept verbatim",
			input: "data: \x1b[32m[INFO]\x1b[0m started\n\n",
			want:  []Event{{Data: "\x1b[32m[INFO]\x1b[0m started"}},
		},
		{
			name:  "empty stream",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSSEScanner(strings.NewReader(tt.input))
			got := collect(t, s)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("events = %#v, want %#v", got, tt.want)
			}
			if err := s.Err(); err != nil {
				t.Fatalf("Err() = %v, want nil", err)
			}
		})
	}
}

func TestSSEScanner_CRLFSplitAcrossReads(t *testing.T) {
	t.Parallel()

	input := "data: a\r\ndata: b\r\n\r\ndata: c\r\r"
	s := NewSSEScanner(iotest.OneByteReader(strings.NewReader(input)))
	got := collect(t, s)
	want := []Event{{Data: "a\nb"}, {Data: "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %#v, want %#v", got, want)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func TestSSEScanner_LineTooLong(t *testing.T) {
	t.Parallel()

	input := "data: ok\n\ndata: " + strings.Repeat("x", MaxLineBytes+1) + "\n\n"
	s := NewSSEScanner(strings.NewReader(input))
	got := collect(t, s)
	if len(got) != 1 || got[0].Data != "ok" {
		t.Fatalf("events = %d, want only the event before the long line", len(got))
	}
	if !errors.Is(s.Err(), bufio.ErrTooLong) {
		t.Fatalf("Err() = %v, want %v", s.Err(), bufio.ErrTooLong)
	}
}

func TestSSEScanner_ReadError(t *testing.T) {
	t.Parallel()

	s := NewSSEScanner(iotest.TimeoutReader(strings.NewReader("data: first\n\ndata: partial\n")))

	got := collect(t, s)
	if len(got) != 1 || got[0].Data != "first" {
		t.Fatalf("events = %#v, want one event with data first", got)
	}
	if !errors.Is(s.Err(), iotest.ErrTimeout) {
		t.Fatalf("Err() = %v, want %v", s.Err(), iotest.ErrTimeout)
	}
	if s.Next() {
		t.Fatalf("Next() = true after error")
	}
}
