// ABOUTME: HTTP client for the gig job board REST API
// ABOUTME: Builds the interceptor chain and performs JSON request/response plumbing

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client talks to the job board API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *slog.Logger

	mu    sync.RWMutex
	hooks []func()
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	rps        float64
	burst      int
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient uses hc as the base client. Its Transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// New creates a Client for baseURL that reads bearer tokens from tokens.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}

	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		logger:  o.logger.With("component", "api"),
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = &bearerTransport{next: base, tokens: tokens, logger: c.logger}
	rt = &unauthorizedTransport{next: rt, invalidate: c.invalidate}
	if o.rps > 0 {
		burst := o.burst
		if burst < 1 {
			burst = 1
		}
		rt = &throttleTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(o.rps), burst)}
	}
	hc.Transport = rt
	c.http = hc

	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnUnauthorized registers fn to run after stored credentials are cleared
// because a response came back 401. Hooks run synchronously, in
// registration order, once per such response.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

// invalidate drops stored credentials and notifies hooks.
func (c *Client) invalidate(ctx context.Context) {
	// The request context may already be done; clearing must still happen.
	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("clearing credentials after 401", "error", err)
	}
	c.logger.Info("session invalidated by server")

	c.mu.RLock()
	hooks := make([]func(), len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

// do sends a JSON request and decodes a successful response into out.
// envelope names the field the server wraps a single record in; when the
// field is absent the whole body is decoded.
func (c *Client) do(ctx context.Context, method, path string, body, out any, envelope string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Method: method, Path: path,
			Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := statusError(method, path, resp.StatusCode, data)
		if apiErr.Details != "" {
			c.logger.Debug("api error details",
				"path", path,
				"request_id", requestID,
				"details", apiErr.Details)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := decodeEnvelope(data, envelope, out); err != nil {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Method: method, Path: path,
			Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func decodeEnvelope(data []byte, key string, out any) error {
	if key != "" {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(data, &env); err == nil {
			if raw, ok := env[key]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				data = raw
			}
		}
	}
	return json.Unmarshal(data, out)
}
