package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"social_gateway/internal/models"
)

// livenessPath is probed with GET; only the status code matters.
const livenessPath = "/api/users"

type HealthService struct {
	fwd Forwarder
	now func() time.Time
	// probes coalesces concurrent checks (one per health stream tick) into a
	// single backend call.
	probes singleflight.Group
}

func NewHealthService(fwd Forwarder) *HealthService {
	return &HealthService{fwd: fwd, now: time.Now}
}

// Check always reports the frontend as ok; the backend is "healthy",
// "status: <code>" or "unavailable". A caller whose ctx ends stops waiting
// and reads "unavailable"; the shared probe keeps running for the others.
func (s *HealthService) Check(ctx context.Context) models.HealthReport {
	// the probe is shared, so it must not inherit one caller's cancellation
	probeCtx := context.WithoutCancel(ctx)
	ch := s.probes.DoChan(livenessPath, func() (interface{}, error) {
		return s.probe(probeCtx), nil
	})

	backend := models.BackendUnavailable
	select {
	case res := <-ch:
		backend = res.Val.(string)
	case <-ctx.Done():
	}

	return models.HealthReport{
		Status:    models.HealthOK,
		Timestamp: s.now().UTC(),
		Services: models.ServiceHealth{
			Frontend: models.HealthOK,
			Backend:  backend,
		},
	}
}

func (s *HealthService) probe(ctx context.Context) string {
	env, err := s.fwd.Forward(ctx, ForwardRequest{Method: http.MethodGet, Path: livenessPath})
	if err != nil {
		return models.BackendUnavailable
	}
	if env.OK() {
		return models.BackendHealthy
	}
	return fmt.Sprintf("status: %d", env.Status)
}
