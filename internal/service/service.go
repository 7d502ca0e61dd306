package service

import (
	"context"
	"net/http"

	"social_gateway/internal/models"
)

// ForwardRequest is one call relayed to the backend origin.
type ForwardRequest struct {
	Method   string
	Path     string // backend path, e.g. /api/auth/login
	RawQuery string
	Body     []byte
	// Header carries caller headers worth relaying (Authorization, X-Request-ID).
	Header http.Header
}

// Forwarder relays a request to the backend exactly once and reports the
// backend's status and parsed body. Transport failures are returned as errors
// wrapping ErrBackendUnavailable.
type Forwarder interface {
	Forward(ctx context.Context, req ForwardRequest) (models.Envelope, error)
}

// Health probes backend liveness.
type Health interface {
	Check(ctx context.Context) models.HealthReport
}

// Service aggregates what the HTTP layer needs.
type Service struct {
	Forwarder
	Health
}

func NewService(backendURL string, httpClient *http.Client) *Service {
	fwd := NewBackendService(backendURL, httpClient)
	return &Service{
		Forwarder: fwd,
		Health:    NewHealthService(fwd),
	}
}
