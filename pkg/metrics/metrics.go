package metrics

import (
	"time"
)

// Collector interface for metrics collection
type Collector interface {
	// Counters
	IncrementCounter(name string, labels map[string]string)
	AddCounter(name string, value float64, labels map[string]string)

	// Gauges
	SetGauge(name string, value float64, labels map[string]string)
	IncrementGauge(name string, labels map[string]string)
	DecrementGauge(name string, labels map[string]string)

	// Histograms
	ObserveHistogram(name string, value float64, labels map[string]string)
	ObserveDuration(name string, start time.Time, labels map[string]string)

	// Registry
	Register(metric Metric) error
	Unregister(name string) error
}

// Metric represents a metric definition
type Metric struct {
	Name    string
	Type    MetricType
	Help    string
	Labels  []string
	Buckets []float64 // For histograms
}

// MetricType represents the type of metric
type MetricType string

const (
	CounterType   MetricType = "counter"
	GaugeType     MetricType = "gauge"
	HistogramType MetricType = "histogram"
)

// Standard hiveboard metrics
var (
	// Hive coordinator metrics
	HiveAgents = Metric{
		Name:   "hiveboard_hive_agents",
		Type:   GaugeType,
		Help:   "Number of registered agents",
		Labels: []string{"state"},
	}

	HiveTasks = Metric{
		Name:   "hiveboard_hive_tasks_total",
		Type:   CounterType,
		Help:   "Total number of tasks created",
		Labels: []string{"type"},
	}

	HiveSwarmCohesion = Metric{
		Name:   "hiveboard_hive_swarm_cohesion",
		Type:   GaugeType,
		Help:   "Current swarm cohesion (0-1)",
		Labels: []string{},
	}

	HiveTickDuration = Metric{
		Name:    "hiveboard_hive_tick_duration_seconds",
		Type:    HistogramType,
		Help:    "Duration of a coordinator tick in seconds",
		Labels:  []string{},
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}

	// API server metrics
	HTTPRequests = Metric{
		Name:   "hiveboard_http_requests_total",
		Type:   CounterType,
		Help:   "Total number of HTTP requests",
		Labels: []string{"path", "method", "status"},
	}

	HTTPRequestDuration = Metric{
		Name:    "hiveboard_http_request_duration_seconds",
		Type:    HistogramType,
		Help:    "HTTP request latency in seconds",
		Labels:  []string{"path", "method"},
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}

	// Monitor metrics
	AlertsRaised = Metric{
		Name:   "hiveboard_alerts_raised_total",
		Type:   CounterType,
		Help:   "Total number of alerts raised",
		Labels: []string{"level"},
	}

	MonitorSamples = Metric{
		Name:   "hiveboard_monitor_samples_total",
		Type:   CounterType,
		Help:   "Total number of performance samples collected",
		Labels: []string{},
	}

	// Event bus metrics
	EventsPublished = Metric{
		Name:   "hiveboard_events_published_total",
		Type:   CounterType,
		Help:   "Total number of events published to the bus",
		Labels: []string{"topic", "status"},
	}
)

// All returns the full standard metric set for bulk registration
func All() []Metric {
	return []Metric{
		HiveAgents,
		HiveTasks,
		HiveSwarmCohesion,
		HiveTickDuration,
		HTTPRequests,
		HTTPRequestDuration,
		AlertsRaised,
		MonitorSamples,
		EventsPublished,
	}
}

// Labels creates a labels map from key-value pairs
func Labels(kvs ...string) map[string]string {
	labels := make(map[string]string)
	for i := 0; i < len(kvs)-1; i += 2 {
		labels[kvs[i]] = kvs[i+1]
	}
	return labels
}
