package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveboard/hiveboard/internal/hive"
	"github.com/hiveboard/hiveboard/internal/resources"
	"github.com/hiveboard/hiveboard/internal/store"
	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/events"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

func testConfig() config.MonitorConfig {
	return config.MonitorConfig{
		SampleInterval:      time.Second,
		HistorySize:         5,
		CPUWarning:          70,
		CPUCritical:         85,
		MemoryWarning:       75,
		MemoryCritical:      90,
		FailureRateCritical: 0.5,
	}
}

func newTestMonitor(cfg config.MonitorConfig) *Monitor {
	return newTestMonitorWithPublisher(cfg, nil)
}

func newTestMonitorWithPublisher(cfg config.MonitorConfig, publisher events.Publisher) *Monitor {
	st := store.NewMemoryStore()
	h := hive.New(config.HiveConfig{TickInterval: time.Second}, st, logging.NewNop(), nil, nil)
	res := resources.NewManager(logging.NewNop())
	return New(cfg, res, h, logging.NewNop(), nil, publisher)
}

// capturePublisher records published events for assertions
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Health() models.HealthStatus { return models.HealthHealthy }
func (p *capturePublisher) Close() error                { return nil }

func (p *capturePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

func TestSampleHistoryBounded(t *testing.T) {
	cfg := testConfig()
	m := newTestMonitor(cfg)

	for i := 0; i < cfg.HistorySize*3; i++ {
		m.Sample()
	}

	snap := m.Snapshot(0)
	assert.Len(t, snap.History, cfg.HistorySize, "history never exceeds its cap")
}

func TestSnapshotCurrentIsNewest(t *testing.T) {
	m := newTestMonitor(testConfig())

	var last models.PerformanceDataPoint
	for i := 0; i < 3; i++ {
		last = m.Sample()
	}

	snap := m.Snapshot(0)
	assert.Equal(t, last.Timestamp, snap.Current.Timestamp)
	assert.Equal(t, last.Timestamp, snap.History[len(snap.History)-1].Timestamp)
}

func TestSnapshotHoursFilter(t *testing.T) {
	m := newTestMonitor(testConfig())
	m.Sample()

	// Age the first point past the one hour cutoff
	m.mu.Lock()
	m.history[0].Timestamp = time.Now().UTC().Add(-2 * time.Hour)
	m.mu.Unlock()
	m.Sample()

	snap := m.Snapshot(1)
	require.Len(t, snap.History, 1, "points older than the window are filtered")

	full := m.Snapshot(0)
	assert.Len(t, full.History, 2, "zero hours returns everything retained")
}

func TestSnapshotCopiesHistory(t *testing.T) {
	m := newTestMonitor(testConfig())
	m.Sample()

	snap := m.Snapshot(0)
	snap.History[0].CPUUsage = 999

	again := m.Snapshot(0)
	assert.NotEqual(t, 999.0, again.History[0].CPUUsage)
}

func TestRecordRequestFeedsThroughputAndErrors(t *testing.T) {
	m := newTestMonitor(testConfig())

	for i := 0; i < 10; i++ {
		m.RecordRequest(20*time.Millisecond, i < 2)
	}
	point := m.Sample()

	assert.InDelta(t, 0.2, point.ErrorRate, 1e-9)
	assert.Greater(t, point.ThroughputTasks, 0.0)
	assert.Greater(t, point.LatencyMs, 0.0)

	// Counters reset after each sample
	point = m.Sample()
	assert.Equal(t, 0.0, point.ErrorRate)
}

func TestAlertLifecycle(t *testing.T) {
	cfg := testConfig()
	m := newTestMonitor(cfg)

	hot := models.PerformanceDataPoint{Timestamp: time.Now(), CPUUsage: 95}
	m.evaluateAlerts(cfg, hot, models.SwarmMetrics{})

	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "CPU usage critical", alerts[0].Title)
	assert.Equal(t, models.AlertCritical, alerts[0].Level)
	assert.False(t, alerts[0].Resolved)

	// Same condition again refreshes the message, no duplicate
	hotter := hot
	hotter.CPUUsage = 99
	m.evaluateAlerts(cfg, hotter, models.SwarmMetrics{})
	alerts = m.Alerts()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "99.0")

	// Condition clears: alert resolves in place
	cool := hot
	cool.CPUUsage = 10
	m.evaluateAlerts(cfg, cool, models.SwarmMetrics{})
	alerts = m.Alerts()
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Resolved)
}

func TestAlertRaisePublishesEvent(t *testing.T) {
	cfg := testConfig()
	pub := &capturePublisher{}
	m := newTestMonitorWithPublisher(cfg, pub)

	hot := models.PerformanceDataPoint{Timestamp: time.Now(), CPUUsage: 95}
	m.evaluateAlerts(cfg, hot, models.SwarmMetrics{})

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAlertRaised, published[0].Type)
	assert.Equal(t, "monitor", published[0].Source)

	// Refreshing and resolving an open alert publish nothing new
	m.evaluateAlerts(cfg, hot, models.SwarmMetrics{})
	cool := hot
	cool.CPUUsage = 10
	m.evaluateAlerts(cfg, cool, models.SwarmMetrics{})
	assert.Len(t, pub.published(), 1)
}

func TestWarningDoesNotFireAboveCritical(t *testing.T) {
	cfg := testConfig()
	m := newTestMonitor(cfg)

	point := models.PerformanceDataPoint{Timestamp: time.Now(), CPUUsage: 95, MemoryUsage: 80}
	m.evaluateAlerts(cfg, point, models.SwarmMetrics{})

	var titles []string
	for _, a := range m.Alerts() {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "CPU usage critical")
	assert.NotContains(t, titles, "CPU usage high", "warning band excludes the critical range")
	assert.Contains(t, titles, "Memory usage high")
}

func TestFailureRateAlert(t *testing.T) {
	cfg := testConfig()
	m := newTestMonitor(cfg)

	swarm := models.SwarmMetrics{CompletedTasks: 1, FailedTasks: 3}
	m.evaluateAlerts(cfg, models.PerformanceDataPoint{Timestamp: time.Now()}, swarm)

	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "High task failure rate", alerts[0].Title)

	// No finished tasks means no defensible rate, so no alert
	m2 := newTestMonitor(cfg)
	m2.evaluateAlerts(cfg, models.PerformanceDataPoint{Timestamp: time.Now()}, models.SwarmMetrics{})
	assert.Empty(t, m2.Alerts())
}

func TestHealthWorstComponentWins(t *testing.T) {
	m := newTestMonitor(testConfig())
	m.RegisterComponent("good", func() models.HealthStatus { return models.HealthHealthy })
	m.RegisterComponent("bad", func() models.HealthStatus { return models.HealthUnhealthy })

	report := m.Health()
	assert.Equal(t, models.HealthUnhealthy, report.Status)
	assert.Equal(t, models.HealthHealthy, report.Components["good"])
	assert.Equal(t, models.HealthUnhealthy, report.Components["bad"])
}

func TestHealthDegradedByCriticalAlert(t *testing.T) {
	cfg := testConfig()
	m := newTestMonitor(cfg)
	m.RegisterComponent("good", func() models.HealthStatus { return models.HealthHealthy })

	m.evaluateAlerts(cfg, models.PerformanceDataPoint{Timestamp: time.Now(), CPUUsage: 95}, models.SwarmMetrics{})

	report := m.Health()
	assert.Equal(t, models.HealthDegraded, report.Status, "unresolved critical alert degrades overall health")
}

func TestHealthUnknownComponentIgnored(t *testing.T) {
	m := newTestMonitor(testConfig())
	m.RegisterComponent("good", func() models.HealthStatus { return models.HealthHealthy })
	m.RegisterComponent("mystery", func() models.HealthStatus { return models.HealthUnknown })

	report := m.Health()
	assert.Equal(t, models.HealthHealthy, report.Status)
}

func TestUptimeGrows(t *testing.T) {
	m := newTestMonitor(testConfig())
	first := m.Uptime()
	time.Sleep(10 * time.Millisecond)
	assert.Greater(t, m.Uptime(), first)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig()
	cfg.SampleInterval = 10 * time.Millisecond
	m := newTestMonitor(cfg)

	m.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	assert.NotEmpty(t, m.Snapshot(0).History, "sampling loop produced points")
}
