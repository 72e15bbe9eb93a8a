package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is kept for APIError.
	maxErrorBody = 1 << 20
)

// SessionInvalidatedFunc is told the login entry point once the session has
// been purged after a failed refresh.
type SessionInvalidatedFunc func(ctx context.Context, loginPath string)

type Client struct {
	baseURL     string
	httpClient  *http.Client
	store       metadata.Repository
	log         logging.Logger
	limiter     *rate.Limiter
	loginPath   string
	onInvalid   SessionInvalidatedFunc
	refreshOnce singleflight.Group

	Auth        *AuthService
	Forms       *FormsService
	Submissions *SubmissionsService
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. to add TLS settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRateLimit limits outgoing requests to rps per second. Zero disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLoginPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.loginPath = p
		}
	}
}

func WithSessionInvalidated(fn SessionInvalidatedFunc) Option {
	return func(c *Client) { c.onInvalid = fn }
}

// New returns a client for the API rooted at baseURL (for example
// http://localhost:8000/api). Tokens are read from and written to store.
func New(baseURL string, store metadata.Repository, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
		log:        logging.Nop(),
		loginPath:  common.DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Forms = &FormsService{c: c}
	c.Submissions = &SubmissionsService{c: c}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// execution is one logical call. The retry runs on a copy with retried set,
// so the one-shot guard never lives on shared state.
type execution struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	out         any
	retried     bool
}

func (e execution) retry() execution {
	e.retried = true
	return e
}

func jsonExecution(method, path string, in, out any) (execution, error) {
	ex := execution{method: method, path: path, out: out}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return ex, fmt.Errorf("failed to marshal request: %w", err)
		}
		ex.body = b
		ex.contentType = "application/json"
	}
	return ex, nil
}

// call sends a JSON request through the full interceptor chain.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ex, err := jsonExecution(method, path, in, out)
	if err != nil {
		return err
	}
	ex.query = query
	return c.do(ctx, ex)
}

func (c *Client) do(ctx context.Context, ex execution) error {
	err := c.send(ctx, ex, true)
	if err == nil {
		return nil
	}
	return c.inbound(ctx, ex, err)
}

// inbound decides what a failed call turns into.
func (c *Client) inbound(ctx context.Context, ex execution, err error) error {
	if ex.path == common.RefreshPath {
		return err
	}
	if ex.retried || !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	refresh, serr := metadata.GetString(ctx, c.store, common.RefreshTokenKey)
	if serr != nil {
		c.log.Warn(ctx, "reading refresh token", "error", serr)
		return err
	}
	if refresh == "" {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	c.log.Debug(ctx, "retrying after refresh", "method", ex.method, "path", ex.path)
	return c.do(ctx, ex.retry())
}

// send is the outbound half plus the round trip. withBearer is false only
// for the refresh call.
func (c *Client) send(ctx context.Context, ex execution, withBearer bool) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	target := c.baseURL + ex.path
	if len(ex.query) > 0 {
		target += "?" + ex.query.Encode()
	}

	var body io.Reader
	if ex.body != nil {
		body = bytes.NewReader(ex.body)
	}
	req, err := http.NewRequestWithContext(ctx, ex.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if ex.contentType != "" {
		req.Header.Set("Content-Type", ex.contentType)
	}
	if withBearer && ex.path != common.RefreshPath {
		token, err := metadata.GetString(ctx, c.store, common.AccessTokenKey)
		if err != nil {
			c.log.Warn(ctx, "reading access token", "error", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", ex.method, "path", ex.path, "request_id", requestID, "error", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done",
		"method", ex.method,
		"path", ex.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"retried", ex.retried,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     ex.method,
			Path:       ex.path,
			RequestID:  requestID,
			Body:       b,
		}
	}

	if ex.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(ex.out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ping reports whether the backend answers at all. Any HTTP status counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}
