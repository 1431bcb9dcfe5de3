package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AgentType defines the category of agent within the swarm
type AgentType string

const (
	WorkerAgentType      AgentType = "worker"
	CoordinatorAgentType AgentType = "coordinator"
	LearnerAgentType     AgentType = "learner"
	// Specialist types carry their domain as a suffix, e.g. "specialist:nlp"
	SpecialistAgentPrefix = "specialist:"
)

// NewSpecialistType builds a specialist agent type for the given domain
func NewSpecialistType(domain string) AgentType {
	return AgentType(SpecialistAgentPrefix + domain)
}

// IsSpecialist reports whether the type is a specialist sub-type
func (t AgentType) IsSpecialist() bool {
	return strings.HasPrefix(string(t), SpecialistAgentPrefix)
}

// Valid reports whether the type is one of the known categories
func (t AgentType) Valid() bool {
	switch t {
	case WorkerAgentType, CoordinatorAgentType, LearnerAgentType:
		return true
	}
	return t.IsSpecialist() && len(t) > len(SpecialistAgentPrefix)
}

// AgentState represents the current operational state of an agent
type AgentState string

const (
	AgentIdle          AgentState = "idle"
	AgentWorking       AgentState = "working"
	AgentLearning      AgentState = "learning"
	AgentCommunicating AgentState = "communicating"
	AgentFailed        AgentState = "failed"
	AgentInactive      AgentState = "inactive"
)

// NeuralType tags the neural backend an agent runs on. Empty means the
// agent uses the basic heuristic processor.
type NeuralType string

const (
	NeuralNone NeuralType = ""
	NeuralFANN NeuralType = "fann"
	NeuralLSTM NeuralType = "lstm"
)

// Advanced reports whether the neural type counts as an advanced backend
func (n NeuralType) Advanced() bool {
	return n == NeuralFANN || n == NeuralLSTM
}

// Position is a 2-D point in swarm space
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another position
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Capability represents a skill an agent possesses. Proficiency and
// LearningRate are always kept within [0,1].
type Capability struct {
	Name         string  `json:"name"`
	Proficiency  float64 `json:"proficiency"`
	LearningRate float64 `json:"learning_rate"`
}

// Clamped returns a copy with proficiency and learning rate clamped to [0,1]
func (c Capability) Clamped() Capability {
	c.Proficiency = Clamp01(c.Proficiency)
	c.LearningRate = Clamp01(c.LearningRate)
	return c
}

// Default capability tuning for a freshly created agent
const (
	DefaultProficiency  = 0.5
	DefaultLearningRate = 0.1
)

// MaxEnergy is the upper bound of an agent's energy budget
const MaxEnergy = 100.0

// Agent is a monitored swarm member. Derived fields (energy, experience,
// position) are owned by the coordinator; clients only ever create agents
// and read them back.
type Agent struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	Type              AgentType    `json:"type"`
	State             AgentState   `json:"state"`
	NeuralType        NeuralType   `json:"neural_type,omitempty"`
	Position          Position     `json:"position"`
	Energy            float64      `json:"energy"`
	ExperienceCount   int          `json:"experience_count"`
	SocialConnections int          `json:"social_connections"`
	Capabilities      []Capability `json:"capabilities"`
	CreatedAt         time.Time    `json:"created_at"`
	LastActive        time.Time    `json:"last_active"`
}

// NewAgent creates an idle agent at the origin with full energy.
// Capabilities are clamped on the way in.
func NewAgent(name string, agentType AgentType, capabilities []Capability) Agent {
	caps := make([]Capability, len(capabilities))
	for i, c := range capabilities {
		caps[i] = c.Clamped()
	}

	now := time.Now().UTC()
	return Agent{
		ID:           uuid.New(),
		Name:         name,
		Type:         agentType,
		State:        AgentIdle,
		Energy:       MaxEnergy,
		Capabilities: caps,
		CreatedAt:    now,
		LastActive:   now,
	}
}

// MeanProficiency returns the average proficiency across capabilities,
// 0 for an agent with none.
func (a Agent) MeanProficiency() float64 {
	if len(a.Capabilities) == 0 {
		return 0
	}
	var sum float64
	for _, c := range a.Capabilities {
		sum += c.Proficiency
	}
	return sum / float64(len(a.Capabilities))
}

// SetEnergy clamps and assigns the agent's energy
func (a *Agent) SetEnergy(energy float64) {
	a.Energy = clampRange(energy, 0, MaxEnergy)
}

// RecordExperience bumps the experience counter and the activity timestamp.
// The counter never decreases.
func (a *Agent) RecordExperience() {
	a.ExperienceCount++
	a.LastActive = time.Now().UTC()
}

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// TaskPriority defines task priority, used for display bucketing only
type TaskPriority int

const (
	LowPriority      TaskPriority = 1
	MediumPriority   TaskPriority = 5
	HighPriority     TaskPriority = 10
	CriticalPriority TaskPriority = 15
)

// Bucket maps an arbitrary priority value onto its display bucket
func (p TaskPriority) Bucket() string {
	switch {
	case p >= CriticalPriority:
		return "critical"
	case p >= HighPriority:
		return "high"
	case p >= MediumPriority:
		return "medium"
	default:
		return "low"
	}
}

// Task is a unit of work tracked by the hive. AssignedAgent is a weak
// reference by id; the task does not own the agent.
type Task struct {
	ID            uuid.UUID    `json:"id"`
	Description   string       `json:"description"`
	Type          string       `json:"type"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	AssignedAgent string       `json:"assigned_agent,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

// NewTask creates a pending task
func NewTask(description, taskType string, priority TaskPriority) Task {
	return Task{
		ID:          uuid.New(),
		Description: description,
		Type:        taskType,
		Priority:    priority,
		Status:      TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// SwarmMetrics is the aggregate snapshot rendered by the dashboard.
// All ratio fields are within [0,1].
type SwarmMetrics struct {
	TotalAgents        int     `json:"total_agents"`
	ActiveAgents       int     `json:"active_agents"`
	CompletedTasks     int     `json:"completed_tasks"`
	FailedTasks        int     `json:"failed_tasks"`
	AveragePerformance float64 `json:"average_performance"`
	SwarmCohesion      float64 `json:"swarm_cohesion"`
	LearningProgress   float64 `json:"learning_progress"`
}

// HiveStatus is the full coordinator snapshot served at /api/hive/status
type HiveStatus struct {
	ID          uuid.UUID    `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	LastUpdate  time.Time    `json:"last_update"`
	Metrics     SwarmMetrics `json:"metrics"`
	SwarmCenter Position     `json:"swarm_center"`
	TotalEnergy float64      `json:"total_energy"`
}

// HealthStatus represents the health state of a component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// Clamp01 clamps v to [0,1]
func Clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
