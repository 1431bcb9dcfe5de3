package monitor

import (
	"time"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// ComponentCheck reports the health of one named subsystem
type ComponentCheck func() models.HealthStatus

// componentChecks are registered once at wiring time; the map is not
// mutated afterwards so reads need no lock
type healthChecks map[string]ComponentCheck

// RegisterComponent adds a named health check consulted by Health
func (m *Monitor) RegisterComponent(name string, check ComponentCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checks == nil {
		m.checks = make(healthChecks)
	}
	m.checks[name] = check
}

// Health assembles the report served at /api/monitoring/health. Overall
// status is the worst component status; an unresolved critical alert also
// degrades it.
func (m *Monitor) Health() models.HealthReport {
	m.mu.RLock()
	checks := make(healthChecks, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	var unresolvedCritical bool
	for _, a := range m.alerts {
		if !a.Resolved && a.Level == models.AlertCritical {
			unresolvedCritical = true
			break
		}
	}
	var current models.PerformanceDataPoint
	if len(m.history) > 0 {
		current = m.history[len(m.history)-1]
	}
	m.mu.RUnlock()

	components := make(map[string]models.HealthStatus, len(checks))
	status := models.HealthHealthy
	for name, check := range checks {
		s := check()
		components[name] = s
		status = worseOf(status, s)
	}

	if unresolvedCritical {
		status = worseOf(status, models.HealthDegraded)
	}

	return models.HealthReport{
		Status:        status,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: m.Uptime(),
		Components:    components,
		Performance:   current,
	}
}

// worseOf returns the less healthy of two statuses. Unknown components do
// not drag an otherwise healthy report down.
func worseOf(a, b models.HealthStatus) models.HealthStatus {
	rank := func(s models.HealthStatus) int {
		switch s {
		case models.HealthUnhealthy:
			return 3
		case models.HealthDegraded:
			return 2
		case models.HealthHealthy:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
