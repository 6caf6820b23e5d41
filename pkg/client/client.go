// Package client talks to the remote job server that executes experiments
// on the lab robot.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/aretw0/biocompute/pkg/ops"
)

// Client is a bearer-token client for the job server API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	poll    config.PollConfig
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s request timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPoll sets the Wait schedule. Zero fields keep their defaults.
func WithPoll(p config.PollConfig) Option {
	return func(c *Client) {
		if p.Timeout > 0 {
			c.poll.Timeout = p.Timeout
		}
		if p.Initial > 0 {
			c.poll.Initial = p.Initial
		}
		if p.Max > 0 {
			c.poll.Max = p.Max
		}
		if p.Factor >= 1 {
			c.poll.Factor = p.Factor
		}
	}
}

// WithMetrics records submissions and polls.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for baseURL authenticating with apiKey.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" || baseURL == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
		poll:    config.DefaultPoll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromConfig creates a client from stored configuration.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return New(cfg.BaseURL, cfg.APIKey, append([]Option{WithPoll(cfg.Poll)}, opts...)...)
}

// User returns the authenticated account.
func (c *Client) User(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/v1/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type submitRequest struct {
	Experiments [][]ops.Record `json:"experiments"`
}

// Submit posts experiments and returns the created job without waiting.
func (c *Client) Submit(ctx context.Context, experiments [][]ops.Record) (*Job, error) {
	if countOps(experiments) == 0 {
		return nil, ErrNoOperations
	}
	var job Job
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", submitRequest{Experiments: experiments}, &job); err != nil {
		c.metrics.submission("error")
		return nil, err
	}
	c.metrics.submission("submitted")
	c.logger.Debug("job submitted", "job_id", job.ID, "experiments", len(experiments))
	return &job, nil
}

func countOps(experiments [][]ops.Record) int {
	n := 0
	for _, e := range experiments {
		n += len(e)
	}
	return n
}

// ListJobs returns the user's jobs for the active challenge.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns one job.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Enrollment returns the user's active challenge.
func (c *Client) Enrollment(ctx context.Context) (*Enrollment, error) {
	var e Enrollment
	if err := c.do(ctx, http.MethodGet, "/api/v1/user/enrollment", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Target returns the base64 target image of the active challenge.
func (c *Client) Target(ctx context.Context) (string, error) {
	e, err := c.Enrollment(ctx)
	if err != nil {
		return "", err
	}
	return e.TargetImageBase64, nil
}

// Leaderboard returns the ranking of the active challenge.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	e, err := c.Enrollment(ctx)
	if err != nil {
		return nil, err
	}
	var body struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
	path := "/api/v1/challenges/" + url.PathEscape(e.ChallengeID) + "/leaderboard"
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

// Wait polls the job until it is complete or failed. The delay between polls
// grows by the configured factor up to the maximum; ErrTimeout is returned
// once the overall timeout has elapsed.
func (c *Client) Wait(ctx context.Context, id string) (*Result, error) {
	start := time.Now()
	delay := c.poll.Initial

	for {
		if time.Since(start) > c.poll.Timeout {
			return nil, fmt.Errorf("job %s: %w after %s", id, ErrTimeout, c.poll.Timeout)
		}

		c.metrics.poll()
		job, err := c.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("job polled", "job_id", id, "status", job.Status)
		if job.Done() {
			return ResultFromJob(job), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = min(time.Duration(float64(delay)*c.poll.Factor), c.poll.Max)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// errorFromResponse prefers the "detail" field of a JSON error body and
// falls back to the raw text.
func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			if s != "" {
				return &APIError{StatusCode: status, Message: s}
			}
		} else {
			return &APIError{StatusCode: status, Message: fmt.Sprint(payload.Detail)}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
