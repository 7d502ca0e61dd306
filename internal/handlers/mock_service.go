package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"social_gateway/internal/models"
	"social_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockForwarder struct {
	mu    sync.Mutex
	env   models.Envelope
	err   error
	calls []service.ForwardRequest
}

func (m *mockForwarder) Forward(ctx context.Context, req service.ForwardRequest) (models.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	return m.env, m.err
}

func (m *mockForwarder) last() service.ForwardRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return service.ForwardRequest{}
	}
	return m.calls[len(m.calls)-1]
}

type mockHealth struct {
	mu      sync.Mutex
	backend string
	checks  int
}

func (m *mockHealth) Check(ctx context.Context) models.HealthReport {
	m.mu.Lock()
	m.checks++
	m.mu.Unlock()
	return models.HealthReport{
		Status:    models.HealthOK,
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Services:  models.ServiceHealth{Frontend: models.HealthOK, Backend: m.backend},
	}
}

// jsonEnvelope builds what the backend forwarder returns for a JSON body.
func jsonEnvelope(status int, body string) models.Envelope {
	return models.Envelope{
		Status:     status,
		StatusText: http.StatusText(status),
		Body:       models.ParseBody([]byte(body)),
		Raw:        []byte(body),
	}
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
