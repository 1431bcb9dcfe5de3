// Package resources detects host capacity, classifies the hardware tier,
// and tunes the active resource profile as load changes.
package resources

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Stress and capacity cut points for auto-optimization, in usage percent
const (
	cpuStressThreshold    = 80.0
	memoryStressThreshold = 85.0
	cpuIdleThreshold      = 50.0
	memoryIdleThreshold   = 60.0
)

// Manager tracks system resources and the active profile
type Manager struct {
	mu            sync.RWMutex
	resources     models.SystemResources
	profile       models.ResourceProfile
	hardwareClass models.HardwareClass
	logger        logging.Logger

	// Previous /proc/stat totals for CPU usage deltas
	prevIdle  uint64
	prevTotal uint64
}

// NewManager detects system resources and selects the optimal profile for
// the detected hardware class
func NewManager(logger logging.Logger) *Manager {
	res := detectSystemResources()
	class := classifyHardware(res)

	m := &Manager{
		resources:     res,
		hardwareClass: class,
		profile:       optimalProfile(class),
		logger:        logger,
	}

	logger.Info("resource manager initialized",
		logging.String("hardware_class", string(class)),
		logging.Int("cpu_cores", res.CPUCores),
		logging.String("profile", m.profile.ProfileName))
	return m
}

// Info returns the full resource snapshot served at /api/resources
func (m *Manager) Info() models.ResourceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.ResourceInfo{
		SystemResources: m.resources,
		ResourceProfile: m.profile,
		HardwareClass:   m.hardwareClass,
	}
}

// Profile returns the currently active tuning profile
func (m *Manager) Profile() models.ResourceProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Refresh re-reads usage figures and auto-optimizes the profile: under
// stress it sheds agents and slows updates, with headroom it climbs back
// toward the optimal profile but never past it.
func (m *Manager) Refresh() {
	m.applyOptimization(m.readCPUUsage(), readMemoryUsage())
}

// applyOptimization folds one usage reading into the snapshot and adjusts
// the active profile
func (m *Manager) applyOptimization(cpu, mem float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources.CPUUsage = cpu
	m.resources.MemoryUsage = mem
	m.resources.LastUpdated = time.Now().UTC()

	optimal := optimalProfile(m.hardwareClass)

	if cpu > cpuStressThreshold || mem > memoryStressThreshold {
		m.profile.MaxAgents = int(float64(m.profile.MaxAgents) * 0.8)
		if m.profile.MaxAgents < 1 {
			m.profile.MaxAgents = 1
		}
		m.profile.UpdateFrequency = uint64(float64(m.profile.UpdateFrequency) * 1.5)
		m.logger.Warn("system under stress, reducing load",
			logging.Int("max_agents", m.profile.MaxAgents),
			logging.Float64("cpu_usage", cpu),
			logging.Float64("memory_usage", mem))
	} else if cpu < cpuIdleThreshold && mem < memoryIdleThreshold {
		if m.profile.MaxAgents < optimal.MaxAgents {
			m.profile.MaxAgents = min(m.profile.MaxAgents+5, optimal.MaxAgents)
		}
		if m.profile.UpdateFrequency > optimal.UpdateFrequency+500 {
			m.profile.UpdateFrequency -= 500
		} else if m.profile.UpdateFrequency > optimal.UpdateFrequency {
			m.profile.UpdateFrequency = optimal.UpdateFrequency
		}
	}
}

// Run refreshes usage on the given interval until the channel closes
func (m *Manager) Run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Refresh()
		}
	}
}

func detectSystemResources() models.SystemResources {
	return models.SystemResources{
		CPUCores:         runtime.NumCPU(),
		AvailableMemory:  readTotalMemory(),
		SIMDCapabilities: detectSIMD(),
		LastUpdated:      time.Now().UTC(),
	}
}

func classifyHardware(res models.SystemResources) models.HardwareClass {
	const gb = 1_000_000_000
	switch {
	case res.CPUCores <= 2 && res.AvailableMemory <= 2*gb:
		return models.HardwareEdge
	case res.CPUCores <= 8 && res.AvailableMemory <= 16*gb:
		return models.HardwareDesktop
	case res.CPUCores <= 32 && res.AvailableMemory <= 64*gb:
		return models.HardwareServer
	default:
		return models.HardwareCloud
	}
}

func optimalProfile(class models.HardwareClass) models.ResourceProfile {
	switch class {
	case models.HardwareEdge:
		return models.ResourceProfile{
			ProfileName:      "Edge Optimized",
			MaxAgents:        5,
			NeuralComplexity: 0.3,
			BatchSize:        1,
			UpdateFrequency:  10000,
		}
	case models.HardwareDesktop:
		return models.ResourceProfile{
			ProfileName:      "Desktop Balanced",
			MaxAgents:        20,
			NeuralComplexity: 0.7,
			BatchSize:        4,
			UpdateFrequency:  5000,
		}
	case models.HardwareServer:
		return models.ResourceProfile{
			ProfileName:      "Server Performance",
			MaxAgents:        100,
			NeuralComplexity: 1.0,
			BatchSize:        16,
			UpdateFrequency:  1000,
		}
	default:
		return models.ResourceProfile{
			ProfileName:      "Cloud Scalable",
			MaxAgents:        500,
			NeuralComplexity: 1.0,
			BatchSize:        32,
			UpdateFrequency:  500,
		}
	}
}

func detectSIMD() []string {
	// CPU feature probing would need cgo or assembly; amd64 baselines are
	// a reasonable report for dashboard display
	if runtime.GOARCH == "amd64" {
		return []string{"SSE4.1", "AVX2"}
	}
	if runtime.GOARCH == "arm64" {
		return []string{"NEON"}
	}
	return nil
}

// readTotalMemory parses MemTotal from /proc/meminfo, 0 where unavailable
func readTotalMemory() uint64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if kb, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
					return kb * 1024
				}
			}
		}
	}
	return 0
}

// readMemoryUsage derives used percent from MemTotal and MemAvailable
func readMemoryUsage() float64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	var total, available uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = kb
		case "MemAvailable:":
			available = kb
		}
	}
	if total == 0 {
		return 0
	}
	return float64(total-available) / float64(total) * 100
}

// readCPUUsage computes usage percent from consecutive /proc/stat reads
func (m *Manager) readCPUUsage() float64 {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0
	}

	var total, idle uint64
	for i, field := range fields[1:] {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		total += v
		// idle + iowait
		if i == 3 || i == 4 {
			idle += v
		}
	}

	m.mu.Lock()
	prevIdle, prevTotal := m.prevIdle, m.prevTotal
	m.prevIdle, m.prevTotal = idle, total
	m.mu.Unlock()

	if prevTotal == 0 || total <= prevTotal {
		return 0
	}
	deltaTotal := float64(total - prevTotal)
	deltaIdle := float64(idle - prevIdle)
	return (deltaTotal - deltaIdle) / deltaTotal * 100
}
