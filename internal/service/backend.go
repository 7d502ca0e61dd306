package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"social_gateway/internal/models"
)

// ErrBackendUnavailable marks failures to reach the backend at all
// (refused, DNS, reset). Backend error statuses are not errors.
var ErrBackendUnavailable = errors.New("backend unavailable")

// relayedHeaders are copied from the caller onto the backend request.
var relayedHeaders = []string{"Authorization", "X-Request-ID", "Accept-Language"}

type BackendService struct {
	baseURL string
	client  *http.Client
}

// NewBackendService targets baseURL (scheme://host[:port], no trailing slash).
// A nil client uses http.DefaultClient; no timeout is imposed here.
func NewBackendService(baseURL string, client *http.Client) *BackendService {
	if client == nil {
		client = http.DefaultClient
	}
	return &BackendService{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

var _ Forwarder = (*BackendService)(nil)

func (s *BackendService) Forward(ctx context.Context, fr ForwardRequest) (models.Envelope, error) {
	target := s.baseURL + fr.Path
	if fr.RawQuery != "" {
		target += "?" + fr.RawQuery
	}

	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}
	req, err := http.NewRequestWithContext(ctx, fr.Method, target, body)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("build backend request %s %s: %w", fr.Method, fr.Path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// auth responses must never be served stale by an intermediate cache
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	for _, name := range relayedHeaders {
		if v := fr.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%w: %s %s: %v", ErrBackendUnavailable, fr.Method, fr.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Envelope{}, fmt.Errorf("%w: read %s %s: %v", ErrBackendUnavailable, fr.Method, fr.Path, err)
	}

	return models.Envelope{
		Status:     resp.StatusCode,
		StatusText: models.ReasonPhrase(resp),
		Body:       models.ParseBody(raw),
		Raw:        raw,
	}, nil
}
