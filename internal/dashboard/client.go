package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/streamtail/internal/logstream"
)

// Ensure Client implements logstream.Source at compile time.
var _ logstream.Source = (*Client)(nil)

// Client opens log streams against the dashboard HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
	logger    *zap.Logger
}

const (
	defaultAddr       = "127.0.0.1:6185"
	defaultUserAgent  = "streamtail/0.1"
	dialTimeout       = 5 * time.Second
	headerTimeout     = 10 * time.Second
	maxErrorBodyBytes = 512
)

// StreamError reports a transport failure on a log stream.
type StreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *StreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stream %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("stream %s: %v", e.URL, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// ErrStreamClosed is reported when the server ends the stream cleanly.
var ErrStreamClosed = errors.New("server closed stream")

// NewClient builds a Client for addr (host:port or URL). A non-empty token is
// sent as a bearer credential.
func NewClient(addr, token string, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout}).DialContext,
		ResponseHeaderTimeout: headerTimeout,
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Transport: transport},
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized dashboard address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Open starts streaming path in the background and returns immediately.
// Each event's data is passed to h.OnData; the first transport failure is
// passed to h.OnError unless the stream was closed first.
func (c *Client) Open(path string, h logstream.Handlers) logstream.Stream {
	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		err := c.consume(ctx, path, h.OnData)
		if err == nil || ctx.Err() != nil {
			return
		}
		if h.OnError != nil {
			h.OnError(err)
		}
	}()
	return s
}

func (c *Client) consume(ctx context.Context, path string, onData func(string)) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &StreamError{URL: reqURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &StreamError{URL: reqURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StreamError{URL: reqURL, StatusCode: resp.StatusCode, Err: readErrorBody(resp)}
	}
	c.logger.Debug("log stream connected", zap.String("url", reqURL))

	scanner := NewSSEScanner(resp.Body)
	for scanner.Next() {
		if ctx.Err() != nil {
			return nil
		}
		if onData != nil {
			onData(scanner.Event().Data)
		}
	}
	if err := scanner.Err(); err != nil {
		return &StreamError{URL: reqURL, Err: fmt.Errorf("read stream: %w", err)}
	}
	return &StreamError{URL: reqURL, Err: ErrStreamClosed}
}

func readErrorBody(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.New(msg)
}

type stream struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *stream) Close() {
	s.once.Do(s.cancel)
}

// Done is closed once the producer goroutine has exited.
func (s *stream) Done() <-chan struct{} {
	return s.done
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard_addr %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
