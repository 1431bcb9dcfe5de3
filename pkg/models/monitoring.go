package models

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceDataPoint is one timestamped performance sample. The monitor
// keeps a bounded history of these for sparkline rendering.
type PerformanceDataPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	CPUUsage        float64   `json:"cpu_usage"`
	MemoryUsage     float64   `json:"memory_usage"`
	ThroughputTasks float64   `json:"throughput_tasks_per_second"`
	LatencyMs       float64   `json:"latency_ms"`
	ErrorRate       float64   `json:"error_rate"`
}

// AlertLevel classifies alert severity
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Alert is a threshold violation raised by the performance monitor.
// Acknowledged is toggled locally by dashboard clients; Resolved is owned
// by the monitor when the underlying condition clears.
type Alert struct {
	ID           uuid.UUID  `json:"id"`
	Level        AlertLevel `json:"level"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Timestamp    time.Time  `json:"timestamp"`
	Acknowledged bool       `json:"acknowledged"`
	Resolved     bool       `json:"resolved"`
}

// NewAlert creates an unacknowledged, unresolved alert
func NewAlert(level AlertLevel, title, message string) Alert {
	return Alert{
		ID:        uuid.New(),
		Level:     level,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// HealthReport is the snapshot served at /api/monitoring/health
type HealthReport struct {
	Status        HealthStatus            `json:"status"`
	Timestamp     time.Time               `json:"timestamp"`
	UptimeSeconds float64                 `json:"uptime_seconds"`
	Components    map[string]HealthStatus `json:"components"`
	Performance   PerformanceDataPoint    `json:"performance"`
}

// SystemResources describes detected host capacity and current usage
type SystemResources struct {
	CPUCores         int       `json:"cpu_cores"`
	AvailableMemory  uint64    `json:"available_memory"`
	CPUUsage         float64   `json:"cpu_usage"`
	MemoryUsage      float64   `json:"memory_usage"`
	SIMDCapabilities []string  `json:"simd_capabilities"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ResourceProfile is a named bundle of capacity tuning parameters chosen
// from the hardware class
type ResourceProfile struct {
	ProfileName      string  `json:"profile_name"`
	MaxAgents        int     `json:"max_agents"`
	NeuralComplexity float64 `json:"neural_complexity"`
	BatchSize        int     `json:"batch_size"`
	UpdateFrequency  uint64  `json:"update_frequency"` // milliseconds
}

// HardwareClass buckets the host into a capacity tier
type HardwareClass string

const (
	HardwareEdge    HardwareClass = "edge"
	HardwareDesktop HardwareClass = "desktop"
	HardwareServer  HardwareClass = "server"
	HardwareCloud   HardwareClass = "cloud"
)

// ResourceInfo is the full snapshot served at /api/resources
type ResourceInfo struct {
	SystemResources SystemResources `json:"system_resources"`
	ResourceProfile ResourceProfile `json:"resource_profile"`
	HardwareClass   HardwareClass   `json:"hardware_class"`
}

// MonitoringSnapshot is the payload served at /api/monitoring/metrics
type MonitoringSnapshot struct {
	Current PerformanceDataPoint   `json:"current"`
	History []PerformanceDataPoint `json:"history"`
}
