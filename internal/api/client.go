package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource yields the bearer token to attach, or "" to send the request
// unauthenticated. It is consulted once per request.
type TokenSource interface {
	Token() string
}

// Notifier receives the user-facing message of every failed call.
// *notify.Center implements it.
type Notifier interface {
	SetError(message string)
}

// RequestHook mutates an outgoing request before it is sent. Returning an
// error aborts the call as a malformed request.
type RequestHook func(*http.Request) error

// Response is a successful (2xx) answer, body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into dest.
func (r *Response) Decode(dest any) error {
	if r == nil {
		return fmt.Errorf("response is nil")
	}
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client talks to the document service through its /xapi prefix.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	notifier  Notifier
	logger    *slog.Logger
	hooks     []RequestHook
}

const (
	// DefaultBaseURL targets the dev proxy, which strips /xapi before
	// forwarding upstream.
	DefaultBaseURL   = "http://127.0.0.1:7000/xapi"
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "docdesk/0.1"

	// RequestIDHeader correlates client log lines with server logs.
	RequestIDHeader = "X-Request-ID"
)

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithNotifier sets who is told about failures.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger sets the logger for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the transport client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRequestHook appends hook after the built-in ones.
func WithRequestHook(hook RequestHook) Option {
	return func(c *Client) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

type discardNotifier struct{}

func (discardNotifier) SetError(string) {}

type noToken struct{}

func (noToken) Token() string { return "" }

// NewClient builds a Client rooted at baseURL. The base path is kept, so
// "http://host/xapi" sends "/api/x" to "http://host/xapi/api/x".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
		tokens:    noToken{},
		notifier:  discardNotifier{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hooks = append([]RequestHook{
		bearerAuth(c.tokens),
		standardHeaders(c.userAgent),
		requestID,
	}, c.hooks...)
	return c, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get issues a GET with the given query.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, c.fail(ctx, exchange{
			method: http.MethodPost,
			path:   path,
			err:    fmt.Errorf("encode body: %w", err),
		})
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, "application/json")
}

// PostForm issues a POST with a urlencoded form body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*Response, error) {
	x := exchange{method: method, path: path}

	reqURL := c.resolve(path, query)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		x.err = fmt.Errorf("create request: %w", err)
		return nil, c.fail(ctx, x)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, hook := range c.hooks {
		if err := hook(req); err != nil {
			x.err = fmt.Errorf("prepare request: %w", err)
			return nil, c.fail(ctx, x)
		}
	}

	x.sent = true
	resp, err := c.http.Do(req)
	if err != nil {
		x.err = fmt.Errorf("execute request: %w", err)
		return nil, c.fail(ctx, x, slog.String("request_id", req.Header.Get(RequestIDHeader)))
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		x.err = fmt.Errorf("read response: %w", err)
		return nil, c.fail(ctx, x, slog.String("request_id", req.Header.Get(RequestIDHeader)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x.status = resp.StatusCode
		x.body = payload
		return nil, c.fail(ctx, x, slog.String("request_id", req.Header.Get(RequestIDHeader)))
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
}

// fail classifies x, notifies, logs and hands the typed error back for the
// caller to return.
func (c *Client) fail(ctx context.Context, x exchange, attrs ...slog.Attr) *Error {
	apiErr := classify(x)
	c.notifier.SetError(apiErr.Message)

	attrs = append(attrs,
		slog.String("method", apiErr.Method),
		slog.String("path", apiErr.Path),
		slog.String("kind", apiErr.Kind.String()),
	)
	if apiErr.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status", apiErr.StatusCode))
	}
	if apiErr.Err != nil {
		attrs = append(attrs, slog.String("error", apiErr.Err.Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelWarn, "api call failed", attrs...)
	return apiErr
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = encodeQuery(query)
	return u.String()
}

// encodeQuery encodes like url.Values.Encode, sorted by key, but leaves the
// commas of a joined tag list literal so it reads taglist=a,b on the wire.
// Commas in every other value stay escaped.
func encodeQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(query)) {
		key := url.QueryEscape(k)
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			value := url.QueryEscape(v)
			if k == paramTagList {
				value = strings.ReplaceAll(value, "%2C", ",")
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
	return b.String()
}

func bearerAuth(tokens TokenSource) RequestHook {
	return func(req *http.Request) error {
		if tokens == nil {
			return nil
		}
		if token := strings.TrimSpace(tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

func standardHeaders(userAgent string) RequestHook {
	return func(req *http.Request) error {
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return nil
	}
}

func requestID(req *http.Request) error {
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
