// Package backend is the portal's only door to the grading backend: uniform verbs that
// carry the browser's session cookies and mirror the CSRF cookie into its header.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/pkg/middleware/requestid"
)

const defaultMaxResponseBytes = 10 << 20

// ErrResponseTooLarge is returned when a backend body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("backend response too large")

// Config points the client at a backend origin.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CSRFCookie string
	CSRFHeader string

	// MaxResponseBytes caps a response body; zero means 10 MiB.
	MaxResponseBytes int64
}

// Observer receives one observation per backend round trip.
type Observer interface {
	ObserveBackendCall(method, endpoint string, status int, duration time.Duration)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client issues requests against the grading backend. It never retries and never caches.
type Client struct {
	base       *url.URL
	http       *http.Client
	csrfCookie string
	csrfHeader string
	maxBody    int64
	logger     *zap.Logger
	observer   Observer
}

// New builds a Client for the configured origin.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: timeout},
		csrfCookie: cfg.CSRFCookie,
		csrfHeader: cfg.CSRFHeader,
		maxBody:    cfg.MaxResponseBytes,
		logger:     zap.NewNop(),
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxResponseBytes
	}
	if c.csrfCookie == "" {
		c.csrfCookie = "XSRF-TOKEN"
	}
	if c.csrfHeader == "" {
		c.csrfHeader = "X-XSRF-TOKEN"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL exposes the configured backend origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Request describes one backend call.
type Request struct {
	Method      string
	Path        string
	Header      http.Header
	Body        Body
	Credentials Credentials
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, creds Credentials, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Credentials: creds})
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, creds Credentials, path string, body Body) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Credentials: creds})
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, creds Credentials, path string, body Body) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body, Credentials: creds})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, creds Credentials, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Credentials: creds})
}

// Do sends the request. Transport failures are returned wrapped; non-2xx answers are
// returned as *StatusError alongside the response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	target := *c.base
	target.Path = c.base.Path + r.Path
	if i := strings.IndexByte(r.Path, '?'); i >= 0 {
		target.Path = c.base.Path + r.Path[:i]
		target.RawQuery = r.Path[i+1:]
	}

	var (
		body        io.ReadCloser
		contentType string
	)
	if r.Body != nil {
		var err error
		body, contentType, err = r.Body.open()
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", r.Method, r.Path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, fmt.Errorf("build %s %s: %w", r.Method, r.Path, err)
	}
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	c.prepare(req, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	endpoint := endpointLabel(r.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(r.Method, endpoint, 0, duration)
		c.logger.Debug("backend call failed", zap.String("method", r.Method), zap.String("path", r.Path), zap.Error(err))
		return nil, fmt.Errorf("backend %s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	c.observe(r.Method, endpoint, resp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("read backend %s %s: %w", r.Method, r.Path, err)
	}
	if int64(len(payload)) > c.maxBody {
		c.logger.Warn("backend response over limit", zap.String("method", r.Method), zap.String("path", r.Path), zap.Int64("limit", c.maxBody))
		return nil, fmt.Errorf("backend %s %s: %w (limit %d bytes)", r.Method, r.Path, ErrResponseTooLarge, c.maxBody)
	}

	c.logger.Debug("backend call",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Body: payload}
	}
	return out, nil
}

// prepare applies the pre-send rules: credentials, CSRF mirroring, multipart content type
// stripping and request ID forwarding.
func (c *Client) prepare(req *http.Request, r Request) {
	for _, cookie := range r.Credentials.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	if token, ok := r.Credentials.Cookie(c.csrfCookie); ok && token != "" {
		req.Header.Set(c.csrfHeader, token)
	}
	if r.Body != nil && r.Body.isMultipart() {
		req.Header.Del("Content-Type")
	}
	if id := requestid.FromContext(req.Context()); id != "" && req.Header.Get(requestid.HeaderKey) == "" {
		req.Header.Set(requestid.HeaderKey, id)
	}
}

func (c *Client) observe(method, endpoint string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(method, endpoint, status, d)
	}
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// endpointLabel collapses numeric path segments so metrics stay low-cardinality.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}
