package models

import "time"

const (
	HealthOK           = "ok"
	BackendHealthy     = "healthy"
	BackendUnavailable = "unavailable"
)

type ServiceHealth struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
}

// HealthReport is served by GET /api/health and streamed over /ws/health.
type HealthReport struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Services  ServiceHealth `json:"services"`
}
