// Package api is the authenticated HTTP client every StockKeeper resource
// service talks through. It resolves paths against the configured base URL,
// attaches the stored bearer token and renews the session once when the
// server answers 401.
package api

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

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/client/session"
	"github.com/atinyakov/StockKeeper/internal/models"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:3000"

	loginPath    = "/auth/login"
	refreshPath  = "/auth/refresh"
	registerPath = "/auth/register"

	maxErrorBody = 64 << 10
)

// Client sends JSON requests to the inventory API on behalf of the stored session.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	log     *zap.Logger
	// onExpired is invoked after the session was cleared because it could not be renewed.
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLoginRedirect registers the callback that sends the user back to the
// login entry point once the session is gone.
func WithLoginRedirect(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New creates a Client for baseURL (DefaultBaseURL when empty) backed by store.
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be an absolute http(s) URL", baseURL)
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   store,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the credential store the client reads from.
func (c *Client) Session() session.Store { return c.store }

// Path joins escaped segments into an API path, e.g.
// Path("transactions", id, "items") -> "/transactions/<id>/items".
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Do sends body (JSON-encoded, may be nil) to path and decodes a 2xx
// response into out (may be nil). A 401 on an authenticated path triggers
// at most one session refresh and at most one retry of the request.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}
	err := c.do(ctx, method, path, payload, out)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		c.log.Error("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	err := c.roundTrip(ctx, method, path, payload, out, !isPublic(path))
	if err == nil || isPublic(path) || !errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}

	if isRetry(ctx) {
		// The renewed token was rejected too.
		c.expire("retried request rejected")
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if rerr := c.refresh(ctx); rerr != nil {
		c.log.Warn("session refresh failed", zap.Error(rerr))
		c.expire("refresh failed")
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return c.do(markRetry(ctx), method, path, payload, out)
}

// Refresh renews the stored token pair using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

// refresh talks to the refresh endpoint through roundTrip directly, so a
// rejected refresh never re-enters the 401 handling in do.
func (c *Client) refresh(ctx context.Context) error {
	rt := c.store.RefreshToken()
	if rt == "" {
		return errNoRefreshToken
	}
	payload, err := json.Marshal(models.RefreshRequest{RefreshToken: rt})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}
	var resp models.AuthResponse
	if err := c.roundTrip(ctx, http.MethodPost, refreshPath, payload, &resp, false); err != nil {
		return err
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return errors.New("refresh response is missing a token")
	}
	if err := c.store.SetTokens(session.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return fmt.Errorf("store refreshed tokens: %w", err)
	}
	c.log.Debug("session refreshed")
	return nil
}

func (c *Client) expire(reason string) {
	c.log.Warn("session expired", zap.String("reason", reason))
	if err := c.store.Clear(); err != nil {
		c.log.Error("failed to clear session", zap.Error(err))
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// roundTrip performs exactly one HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out any, auth bool) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if auth {
		if token := c.store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			c.log.Warn("no access token stored, sending unauthenticated request",
				zap.String("method", method), zap.String("path", path))
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func isPublic(path string) bool {
	return path == loginPath || path == refreshPath || path == registerPath
}

type retryKey struct{}

// markRetry tags ctx as carrying the single permitted retry of a request.
func markRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryKey{}, true)
}

func isRetry(ctx context.Context) bool {
	v, _ := ctx.Value(retryKey{}).(bool)
	return v
}
