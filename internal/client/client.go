// Package client is the outbound request wrapper used by the gateway's pages
// and by socialctl: it prefixes the API base path, attaches the stored bearer
// token and turns response statuses into errors in one place.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"social_gateway/internal/logger"
	"social_gateway/internal/models"
	"social_gateway/internal/session"
)

const (
	// DefaultBaseURL is where the gateway serves its /api surface locally.
	DefaultBaseURL = "http://localhost:8080/api"

	HeaderRequestID = "X-Request-ID"
)

type Client struct {
	baseURL string
	store   session.Store
	http    *http.Client
	log     *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The wrapper adds no timeout of its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL (e.g. http://localhost:8080/api) reading and
// writing the token through store. A nil store behaves as an always-empty slot.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the slot the client authenticates with.
func (c *Client) Store() session.Store { return c.store }

// Send performs one request and returns the response envelope whatever its
// status. Only encoding and transport failures are errors. Diagnostic pages
// use it to show responses verbatim.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*models.Envelope, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := session.Token(c.store); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rid := RequestIDFrom(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set(HeaderRequestID, rid)

	resp, err := c.http.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.Warnw("client_request_failed", "method", method, "path", path, "request_id", rid, "err", err)
		}
		return nil, fmt.Errorf("cannot reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	if c.log != nil {
		c.log.Debugw("client_response", "method", method, "path", path, "status", resp.StatusCode, "request_id", rid)
	}
	return &models.Envelope{
		Status:     resp.StatusCode,
		StatusText: models.ReasonPhrase(resp),
		Body:       models.ParseBody(raw),
		Raw:        raw,
	}, nil
}

// Do is Send plus status inspection. A 401 empties the token slot and yields
// an error matching ErrUnauthenticated; callers decide where to navigate (see
// HandleUnauthenticated). Other non-2xx statuses yield *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*models.Envelope, error) {
	env, err := c.Send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if env.Status == http.StatusUnauthorized {
		if c.store != nil {
			c.store.Clear()
		}
		if c.log != nil {
			c.log.Infow("client_session_rejected", "method", method, "path", path)
		}
		return env, newAPIError(env)
	}
	if !env.OK() {
		return env, newAPIError(env)
	}
	return env, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return payload, nil
	}
}

// decode unmarshals the raw body of a successful envelope into dst.
func decode(env *models.Envelope, dst any) error {
	if err := json.Unmarshal(env.Raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
