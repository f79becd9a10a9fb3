package services

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// HealthStatus is the health endpoint payload
type HealthStatus struct {
	Status    string    `json:"status"`
	Time      time.Time `json:"time"`
	UptimeSec int64     `json:"uptimeSec"`
	Store     string    `json:"store"`
}

// HealthService reports process liveness
type HealthService interface {
	Status() HealthStatus
}

type healthService struct {
	clock   clockwork.Clock
	started time.Time
	store   Readiness
}

// NewHealthService creates a health service; uptime counts from this call
func NewHealthService(clock clockwork.Clock, store Readiness) HealthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &healthService{clock: clock, started: clock.Now(), store: store}
}

// Status returns the current health snapshot
func (s *healthService) Status() HealthStatus {
	now := s.clock.Now()

	store := "unavailable"
	if s.store != nil && s.store.Ready() {
		store = "ready"
	}

	return HealthStatus{
		Status:    "ok",
		Time:      now.UTC(),
		UptimeSec: int64(now.Sub(s.started).Seconds()),
		Store:     store,
	}
}
