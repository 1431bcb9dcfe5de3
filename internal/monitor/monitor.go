// Package monitor samples system performance into a bounded history ring,
// raises threshold alerts, and assembles the health report the dashboard
// polls.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/hiveboard/hiveboard/internal/hive"
	"github.com/hiveboard/hiveboard/internal/resources"
	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/events"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/metrics"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// latencyAlpha weights the exponential moving average of request latency
const latencyAlpha = 0.2

// Monitor owns the performance history and alert state
type Monitor struct {
	mu      sync.RWMutex
	cfg     config.MonitorConfig
	history []models.PerformanceDataPoint
	alerts  []models.Alert
	checks  healthChecks

	res       *resources.Manager
	hive      *hive.Coordinator
	logger    logging.Logger
	collector metrics.Collector
	publisher events.Publisher

	started time.Time

	// Request accounting since the last sample
	latencyEWMA   float64
	requestCount  int
	errorCount    int
	lastThrough   float64
	lastSampledAt time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor over the resource manager and hive coordinator
func New(cfg config.MonitorConfig, res *resources.Manager, h *hive.Coordinator, logger logging.Logger, collector metrics.Collector, publisher events.Publisher) *Monitor {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 60
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Monitor{
		cfg:       cfg,
		res:       res,
		hive:      h,
		logger:    logger,
		collector: collector,
		publisher: publisher,
		started:   time.Now().UTC(),
		history:   make([]models.PerformanceDataPoint, 0, cfg.HistorySize),
	}
}

// SetConfig swaps thresholds at runtime (config hot reload). The history
// cap changes take effect on the next sample.
func (m *Monitor) SetConfig(cfg config.MonitorConfig) {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 60
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// RecordRequest feeds one served HTTP request into the throughput and
// latency figures of the next sample
func (m *Monitor) RecordRequest(duration time.Duration, isError bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := float64(duration.Milliseconds())
	if m.latencyEWMA == 0 {
		m.latencyEWMA = ms
	} else {
		m.latencyEWMA = latencyAlpha*ms + (1-latencyAlpha)*m.latencyEWMA
	}
	m.requestCount++
	if isError {
		m.errorCount++
	}
}

// Start launches the sampling loop
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.SampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sample()
			}
		}
	}()
}

// Stop halts the sampling loop
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Sample takes one performance data point, appends it to the bounded
// history, and re-evaluates the alert thresholds
func (m *Monitor) Sample() models.PerformanceDataPoint {
	info := m.res.Info()
	swarm := m.hive.Metrics()

	m.mu.Lock()

	now := time.Now().UTC()
	elapsed := now.Sub(m.lastSampledAt).Seconds()
	if m.lastSampledAt.IsZero() || elapsed <= 0 {
		elapsed = m.cfg.SampleInterval.Seconds()
	}

	var errorRate float64
	if m.requestCount > 0 {
		errorRate = float64(m.errorCount) / float64(m.requestCount)
	}

	point := models.PerformanceDataPoint{
		Timestamp:       now,
		CPUUsage:        info.SystemResources.CPUUsage,
		MemoryUsage:     info.SystemResources.MemoryUsage,
		ThroughputTasks: float64(m.requestCount) / elapsed,
		LatencyMs:       m.latencyEWMA,
		ErrorRate:       errorRate,
	}

	m.history = append(m.history, point)
	if overflow := len(m.history) - m.cfg.HistorySize; overflow > 0 {
		m.history = append(m.history[:0], m.history[overflow:]...)
	}

	m.lastThrough = point.ThroughputTasks
	m.requestCount = 0
	m.errorCount = 0
	m.lastSampledAt = now

	cfg := m.cfg
	m.mu.Unlock()

	if m.collector != nil {
		m.collector.IncrementCounter(metrics.MonitorSamples.Name, nil)
	}

	m.evaluateAlerts(cfg, point, swarm)
	return point
}

// Snapshot returns the current point plus history, optionally limited to
// the trailing window in hours (0 means everything retained)
func (m *Monitor) Snapshot(hours int) models.MonitoringSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var current models.PerformanceDataPoint
	if len(m.history) > 0 {
		current = m.history[len(m.history)-1]
	}

	history := m.history
	if hours > 0 {
		cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		start := 0
		for start < len(history) && history[start].Timestamp.Before(cutoff) {
			start++
		}
		history = history[start:]
	}

	out := make([]models.PerformanceDataPoint, len(history))
	copy(out, history)
	return models.MonitoringSnapshot{Current: current, History: out}
}

// Uptime returns seconds since the monitor started
func (m *Monitor) Uptime() float64 {
	return time.Since(m.started).Seconds()
}
