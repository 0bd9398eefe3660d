package dashboard

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/streamtail/internal/logstream"
)

type recorder struct {
	lines chan string
	errs  chan error
}

func newRecorder() *recorder {
	return &recorder{lines: make(chan string, 64), errs: make(chan error, 4)}
}

func (r *recorder) handlers() logstream.Handlers {
	return logstream.Handlers{
		OnData:  func(line string) { r.lines <- line },
		OnError: func(err error) { r.errs <- err },
	}
}

func (r *recorder) nextLine(t *testing.T) string {
	t.Helper()
	select {
	case line := <-r.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for line")
		return ""
	}
}

func (r *recorder) nextErr(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errs:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for error")
		return nil
	}
}

func waitDone(t *testing.T, s logstream.Stream) {
	t.Helper()
	done, ok := s.(interface{ Done() <-chan struct{} })
	if !ok {
		t.Fatalf("stream %T has no Done channel", s)
	}
	select {
	case <-done.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("producer did not exit")
	}
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAddr {
		t.Fatalf("host = %q, want %q", u.Host, defaultAddr)
	}

	u, err = parseBaseURL("https://bot.example.com:8443/dashboard?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://bot.example.com:8443" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://[::1"); err == nil {
		t.Fatalf("parseBaseURL accepted malformed address")
	}
}

func TestClient_StreamsEventDataInOrder(t *testing.T) {
	t.Parallel()

	requests := make(chan *http.Request, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(r.Context())
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(w, "data: line %d\n\n", i)
			flusher.Flush()
		}
		fmt.Fprint(w, ": keepalive\n\ndata: multi\ndata: part\n\n")
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(server.URL, " secret ", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	rec := newRecorder()
	s := c.Open(logstream.EndpointPath, rec.handlers())

	for _, want := range []string{"line 1", "line 2", "line 3", "multi\npart"} {
		if got := rec.nextLine(t); got != want {
			t.Fatalf("line = %q, want %q", got, want)
		}
	}
	req := <-requests
	if req.URL.Path != logstream.EndpointPath {
		t.Fatalf("path = %q, want %q", req.URL.Path, logstream.EndpointPath)
	}
	if got := req.Header.Get("Accept"); got != "text/event-stream" {
		t.Fatalf("Accept = %q, want text/event-stream", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("Authorization = %q, want %q", got, "Bearer secret")
	}
	if got := req.Header.Get("User-Agent"); got != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", got, defaultUserAgent)
	}

	s.Close()
	s.Close()
	waitDone(t, s)

	select {
	case err := <-rec.errs:
		t.Fatalf("OnError called after Close: %v", err)
	default:
	}
}

func TestClient_ServerCloseReportsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: only\n\n")
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	rec := newRecorder()
	s := c.Open(logstream.EndpointPath, rec.handlers())

	if got := rec.nextLine(t); got != "only" {
		t.Fatalf("line = %q, want only", got)
	}
	err = rec.nextErr(t)
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("err = %v, want ErrStreamClosed", err)
	}
	waitDone(t, s)
}

func TestClient_StatusErrorReported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	rec := newRecorder()
	c.Open(logstream.EndpointPath, rec.handlers())

	err = rec.nextErr(t)
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("err = %T %v, want *StreamError", err, err)
	}
	if streamErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("StatusCode = %d, want 401", streamErr.StatusCode)
	}
	if streamErr.Err == nil || streamErr.Err.Error() != "unauthorized" {
		t.Fatalf("Err = %v, want unauthorized body", streamErr.Err)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("received lines on failed request")
	}
}

func TestClient_OversizedLineReported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: before\n\n")
		fmt.Fprint(w, "data: "+strings.Repeat("x", MaxLineBytes+1))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	rec := newRecorder()
	s := c.Open(logstream.EndpointPath, rec.handlers())

	if got := rec.nextLine(t); got != "before" {
		t.Fatalf("line = %q, want before", got)
	}
	err = rec.nextErr(t)
	var streamErr *StreamError
	if !errors.As(err, &streamErr) || !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("err = %v, want *StreamError wrapping bufio.ErrTooLong", err)
	}
	waitDone(t, s)
	if len(rec.lines) != 0 {
		t.Fatalf("oversized line was delivered")
	}
}

func TestClient_ConnectionRefusedReported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, "", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	rec := newRecorder()
	c.Open(logstream.EndpointPath, rec.handlers())

	var streamErr *StreamError
	if err := rec.nextErr(t); !errors.As(err, &streamErr) || streamErr.StatusCode != 0 {
		t.Fatalf("err = %v, want transport *StreamError", err)
	}
}

func TestClient_FeedsBuffer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 1; i <= logstream.MaxLines+1; i++ {
			fmt.Fprintf(w, "data: line %d\n\n", i)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", nil)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	b := logstream.New(c)
	b.Open()

	deadline := time.Now().Add(2 * time.Second)
	for b.Active() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if b.Active() {
		t.Fatalf("buffer still active after server closed stream")
	}

	lines := b.Lines()
	if len(lines) != logstream.KeepLines+1 {
		t.Fatalf("len = %d, want %d", len(lines), logstream.KeepLines+1)
	}
	if last := lines[len(lines)-1]; last != fmt.Sprintf("line %d", logstream.MaxLines+1) {
		t.Fatalf("last = %q", last)
	}
	if !errors.Is(b.LastError(), ErrStreamClosed) {
		t.Fatalf("LastError = %v, want ErrStreamClosed", b.LastError())
	}
}
