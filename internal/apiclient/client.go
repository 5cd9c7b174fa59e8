// Package apiclient issues authenticated JSON calls against the worklog API.
// It attaches the session's bearer token, decodes responses strictly, and
// surfaces failures as status-carrying transport errors. It performs exactly
// one round-trip per call: no retries, no caching.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/observability"
	"github.com/spec-kit/worklog-dictionaries/internal/session"
	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

// Client is the authenticated request client.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *session.Store
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client. Tests use this to
// route requests into an in-process server.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithMetrics records round-trip counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New constructs a client bound to a session store.
func New(cfg config.APIClientConfig, sess *session.Store, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout()},
		session: sess,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one JSON round-trip. A non-nil body is JSON-encoded; a non-nil
// out receives the strictly decoded response. Non-2xx statuses become a
// TransportError; a 401 additionally clears the session before the error is
// propagated, per the transport's contract with the credential store.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.metrics.RecordError(path, method, "NETWORK")
		return &util.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &util.TransportError{StatusCode: resp.StatusCode, Method: method, Path: path, Err: err}
	}
	c.metrics.RecordRequest(path, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Info("session expired, clearing credentials", zap.String("path", path))
			c.session.Clear(ctx)
		}
		return &util.TransportError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: data}
	}

	if out == nil {
		return nil
	}
	if err := domain.DecodeStrict(data, out); err != nil {
		return err
	}
	return nil
}

// Login authenticates against /auth/token with form credentials, loads the
// profile from /auth/me, and stores both in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &util.TransportError{Method: http.MethodPost, Path: "/auth/token", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &util.TransportError{StatusCode: resp.StatusCode, Method: http.MethodPost, Path: "/auth/token", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &util.TransportError{StatusCode: resp.StatusCode, Method: http.MethodPost, Path: "/auth/token", Body: data}
	}

	var token domain.TokenResponse
	if err := domain.DecodeStrict(data, &token); err != nil {
		return err
	}

	// fetch the profile with the fresh token before committing credentials
	profReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return err
	}
	profReq.Header.Set("Authorization", "Bearer "+token.AccessToken)

	profResp, err := c.httpc.Do(profReq)
	if err != nil {
		return &util.TransportError{Method: http.MethodGet, Path: "/auth/me", Err: err}
	}
	defer profResp.Body.Close()

	profData, err := io.ReadAll(profResp.Body)
	if err != nil {
		return &util.TransportError{StatusCode: profResp.StatusCode, Method: http.MethodGet, Path: "/auth/me", Err: err}
	}
	if profResp.StatusCode != http.StatusOK {
		return &util.TransportError{StatusCode: profResp.StatusCode, Method: http.MethodGet, Path: "/auth/me", Body: profData}
	}

	var profile domain.UserProfile
	if err := domain.DecodeStrict(profData, &profile); err != nil {
		return err
	}

	c.session.SetCredentials(ctx, token.AccessToken, profile)
	c.logger.Info("logged in", zap.String("email", profile.Email), zap.String("role", string(profile.Role)))
	return nil
}
