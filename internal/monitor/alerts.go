package monitor

import (
	"context"
	"fmt"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/events"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/metrics"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// maxResolvedAlerts bounds how many resolved alerts linger for display
const maxResolvedAlerts = 50

// evaluateAlerts checks the latest sample against the configured
// thresholds. An alert title stays unique while unresolved; a condition
// that clears resolves its alert.
func (m *Monitor) evaluateAlerts(cfg config.MonitorConfig, point models.PerformanceDataPoint, swarm models.SwarmMetrics) {
	type condition struct {
		title   string
		level   models.AlertLevel
		active  bool
		message string
	}

	var failureRate float64
	if total := swarm.CompletedTasks + swarm.FailedTasks; total > 0 {
		failureRate = float64(swarm.FailedTasks) / float64(total)
	}

	conditions := []condition{
		{
			title:   "CPU usage critical",
			level:   models.AlertCritical,
			active:  point.CPUUsage >= cfg.CPUCritical,
			message: fmt.Sprintf("CPU usage: %.1f%%", point.CPUUsage),
		},
		{
			title:   "CPU usage high",
			level:   models.AlertWarning,
			active:  point.CPUUsage >= cfg.CPUWarning && point.CPUUsage < cfg.CPUCritical,
			message: fmt.Sprintf("CPU usage: %.1f%%", point.CPUUsage),
		},
		{
			title:   "Memory usage critical",
			level:   models.AlertCritical,
			active:  point.MemoryUsage >= cfg.MemoryCritical,
			message: fmt.Sprintf("Memory usage: %.1f%%", point.MemoryUsage),
		},
		{
			title:   "Memory usage high",
			level:   models.AlertWarning,
			active:  point.MemoryUsage >= cfg.MemoryWarning && point.MemoryUsage < cfg.MemoryCritical,
			message: fmt.Sprintf("Memory usage: %.1f%%", point.MemoryUsage),
		},
		{
			title:   "High task failure rate",
			level:   models.AlertCritical,
			active:  failureRate >= cfg.FailureRateCritical && swarm.CompletedTasks+swarm.FailedTasks > 0,
			message: fmt.Sprintf("Task failure rate: %.1f%%", failureRate*100),
		},
	}

	m.mu.Lock()

	open := make(map[string]int)
	for i, a := range m.alerts {
		if !a.Resolved {
			open[a.Title] = i
		}
	}

	var raised []models.Alert
	for _, cond := range conditions {
		idx, isOpen := open[cond.title]
		switch {
		case cond.active && !isOpen:
			alert := models.NewAlert(cond.level, cond.title, cond.message)
			m.alerts = append(m.alerts, alert)
			raised = append(raised, alert)
			m.logger.Warn("alert raised",
				logging.String("title", alert.Title),
				logging.String("level", string(alert.Level)),
				logging.String("message", alert.Message))
			if m.collector != nil {
				m.collector.IncrementCounter(metrics.AlertsRaised.Name, metrics.Labels("level", string(alert.Level)))
			}

		case cond.active && isOpen:
			m.alerts[idx].Message = cond.message

		case !cond.active && isOpen:
			m.alerts[idx].Resolved = true
			m.logger.Info("alert resolved", logging.String("title", cond.title))
		}
	}

	m.pruneResolvedLocked()
	m.mu.Unlock()

	// Publish outside the lock so a slow broker cannot stall alert state
	for _, alert := range raised {
		m.publishRaised(alert)
	}
}

func (m *Monitor) publishRaised(alert models.Alert) {
	err := m.publisher.Publish(context.Background(), events.NewEvent(events.EventAlertRaised, "monitor", alert))
	status := "ok"
	if err != nil {
		status = "error"
		m.logger.Warn("alert event publish failed",
			logging.String("title", alert.Title),
			logging.Err(err))
	}
	if m.collector != nil {
		m.collector.IncrementCounter(metrics.EventsPublished.Name,
			metrics.Labels("topic", events.EventAlertRaised.Topic(), "status", status))
	}
}

// Alerts returns all retained alerts, newest last
func (m *Monitor) Alerts() []models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

func (m *Monitor) pruneResolvedLocked() {
	resolved := 0
	for _, a := range m.alerts {
		if a.Resolved {
			resolved++
		}
	}
	if resolved <= maxResolvedAlerts {
		return
	}

	drop := resolved - maxResolvedAlerts
	kept := m.alerts[:0]
	for _, a := range m.alerts {
		if a.Resolved && drop > 0 {
			drop--
			continue
		}
		kept = append(kept, a)
	}
	m.alerts = kept
}
