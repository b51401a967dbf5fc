// Package netx provides the JSON-over-HTTP client used for the camkeeper
// data APIs (pipeline generation and camera configuration).
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("service unavailable")
)

// StatusError is returned for non-2xx responses that are not mapped to a
// sentinel.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, e.Body)
}

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource func() string

type Options struct {
	Timeout      time.Duration
	Retries      uint64
	RetryBackoff time.Duration
	// OnUnauthorized runs after the server rejected the bearer token.
	OnUnauthorized func(ctx context.Context)
	HTTPClient     *http.Client
}

const (
	defaultTimeout      = 20 * time.Second
	defaultRetryBackoff = 500 * time.Millisecond
	maxErrorBody        = 4 << 10
)

// Client sends authenticated JSON requests relative to a base URL.
type Client struct {
	baseURL string
	token   TokenSource
	opts    Options
	http    *http.Client
	logger  logging.Logger
}

// newRequestID is a test seam.
var newRequestID = uuid.NewString

func NewClient(baseURL string, token TokenSource, opts Options, logger logging.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		opts:    opts,
		http:    hc,
		logger:  logger.With("component", "netx"),
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one JSON request, with a bearer token when one is available.
// For idempotent methods, network errors and 5xx responses are retried up
// to Options.Retries times with a constant backoff; every attempt shares
// the same request id and has its own timeout. POST is sent once. A 401
// invokes OnUnauthorized and returns ErrUnauthorized.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	token := c.token()

	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	reqID := newRequestID()
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	log := c.logger.With("method", method, "url", url, "request_id", reqID)

	retries := c.opts.Retries
	if !idempotent(method) {
		retries = 0
	}
	backoff := retry.WithMaxRetries(retries, retry.NewConstant(c.opts.RetryBackoff))
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.once(ctx, method, url, reqID, token, body, out)
		if err != nil && retryable(err) {
			log.Debug(ctx, "request attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	if errors.Is(err, ErrUnauthorized) && c.opts.OnUnauthorized != nil {
		log.Info(ctx, "bearer token rejected")
		c.opts.OnUnauthorized(ctx)
	}
	if err != nil {
		log.Warn(ctx, "request failed", "attempts", attempt, "error", err)
	}
	return err
}

func (c *Client) once(ctx context.Context, method, url, reqID, token string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", ErrUnavailable, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))})
	case resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// idempotent reports whether repeating method cannot create a second resource.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
