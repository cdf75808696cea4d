// Package client talks to the cineadmin REST API. HTTPClient implements
// catalog.Backend, so the catalog core can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Clark-Hu/cineadmin/internal/logging"
)

var (
	ErrNotFound     = errors.New("client: not found")
	ErrUnauthorized = errors.New("client: unauthorized")
	ErrForbidden    = errors.New("client: forbidden")
	ErrConflict     = errors.New("client: conflict")
	ErrInvalid      = errors.New("client: invalid request")
	ErrRateLimited  = errors.New("client: rate limited")
	ErrServer       = errors.New("client: server error")
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: server returned %d", e.Status)
	}
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps the status to one of the package sentinels.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return ErrInvalid
	case e.Status >= 500:
		return ErrServer
	default:
		return nil
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const maxErrorBody = 64 << 10

// statusError builds a StatusError from a response body, tolerating bodies
// that are not the usual {code, message} JSON.
func statusError(status int, body []byte) *StatusError {
	se := &StatusError{Status: status}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		se.Code = payload.Code
		se.Message = payload.Message
	}
	if se.Message == "" {
		se.Message = strings.TrimSpace(string(body))
		if len(se.Message) > 200 {
			se.Message = se.Message[:200]
		}
	}
	return se
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *log.Logger
}

// HTTPClient calls the REST API with an optional bearer token.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger

	mu    sync.RWMutex
	token string
}

// New constructs a client for the server at opts.BaseURL.
func New(opts Options) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
				MaxIdleConnsPerHost:   8,
			},
		},
		logger: logging.Component(opts.Logger, "client"),
		token:  opts.Token,
	}, nil
}

// Token returns the current access token.
func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the access token sent with every request.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	rel := &url.URL{Path: c.baseURL.Path + path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(rel).String()
}

// do sends one request. A non-nil in is sent as JSON; a non-nil out receives
// the decoded JSON answer.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := statusError(resp.StatusCode, raw)
		if resp.StatusCode >= 500 {
			c.logger.Warn("unexpected server status", "method", method, "path", path, "status", resp.StatusCode, "code", se.Code)
		}
		return se
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
