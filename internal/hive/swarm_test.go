package hive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hiveboard/hiveboard/pkg/models"
)

func agentAt(x, y float64) models.Agent {
	a := models.NewAgent("a", models.WorkerAgentType, nil)
	a.Position = models.Position{X: x, Y: y}
	return a
}

func TestSwarmCenterOf(t *testing.T) {
	assert.Equal(t, models.Position{}, swarmCenterOf(nil), "empty swarm centers on the origin")

	agents := []models.Agent{agentAt(0, 0), agentAt(10, 20)}
	center := swarmCenterOf(agents)
	assert.InDelta(t, 5, center.X, 1e-9)
	assert.InDelta(t, 10, center.Y, 1e-9)
}

func TestComputeMetricsEmptySwarm(t *testing.T) {
	m := computeMetrics(nil, nil)
	assert.Equal(t, 0, m.TotalAgents)
	assert.Equal(t, 1.0, m.SwarmCohesion, "empty swarm is perfectly cohesive")
	assert.Equal(t, 0.0, m.LearningProgress)
}

func TestComputeMetricsSingleAgent(t *testing.T) {
	m := computeMetrics([]models.Agent{agentAt(50, 50)}, nil)
	assert.Equal(t, 1.0, m.SwarmCohesion, "no pairs means full cohesion")
}

func TestComputeMetricsCohesionFalloff(t *testing.T) {
	// Two agents 100 apart: mean pairwise distance 100, cohesion 1/(1+1)
	agents := []models.Agent{agentAt(0, 0), agentAt(100, 0)}
	m := computeMetrics(agents, nil)
	assert.InDelta(t, 0.5, m.SwarmCohesion, 1e-9)

	// Tighter swarm is more cohesive
	tight := computeMetrics([]models.Agent{agentAt(0, 0), agentAt(10, 0)}, nil)
	assert.Greater(t, tight.SwarmCohesion, m.SwarmCohesion)
}

func TestComputeMetricsTaskCounts(t *testing.T) {
	done := models.NewTask("a", "general", models.LowPriority)
	done.Status = models.TaskCompleted
	failed := models.NewTask("b", "general", models.LowPriority)
	failed.Status = models.TaskFailed
	pending := models.NewTask("c", "general", models.LowPriority)

	m := computeMetrics(nil, []models.Task{done, failed, pending})
	assert.Equal(t, 1, m.CompletedTasks)
	assert.Equal(t, 1, m.FailedTasks)
}

func TestComputeMetricsLearningProgress(t *testing.T) {
	a := agentAt(0, 0)
	a.ExperienceCount = 50
	m := computeMetrics([]models.Agent{a}, nil)
	assert.InDelta(t, 0.5, m.LearningProgress, 1e-9)

	// Saturates at 1 no matter how much experience accumulates
	a.ExperienceCount = 100000
	m = computeMetrics([]models.Agent{a}, nil)
	assert.Equal(t, 1.0, m.LearningProgress)
}

func TestComputeMetricsActiveAgents(t *testing.T) {
	working := agentAt(0, 0)
	working.State = models.AgentWorking
	idle := agentAt(1, 1)

	m := computeMetrics([]models.Agent{working, idle}, nil)
	assert.Equal(t, 2, m.TotalAgents)
	assert.Equal(t, 1, m.ActiveAgents)
}

func TestFittestIdlePrefersProficiency(t *testing.T) {
	novice := models.NewAgent("novice", models.WorkerAgentType, []models.Capability{
		{Name: "general", Proficiency: 0.2, LearningRate: 0.1},
	})
	expert := models.NewAgent("expert", models.WorkerAgentType, []models.Capability{
		{Name: "general", Proficiency: 0.9, LearningRate: 0.1},
	})
	task := models.NewTask("work", "general", models.MediumPriority)

	best, ok := fittestIdle([]models.Agent{novice, expert}, task)
	assert.True(t, ok)
	assert.Equal(t, expert.ID, best.ID)
}

func TestFittestIdleSkipsBusyAndLearners(t *testing.T) {
	busy := models.NewAgent("busy", models.WorkerAgentType, nil)
	busy.State = models.AgentWorking
	learner := models.NewAgent("learner", models.LearnerAgentType, nil)
	task := models.NewTask("work", "general", models.MediumPriority)

	_, ok := fittestIdle([]models.Agent{busy, learner}, task)
	assert.False(t, ok)
}

func TestFittestIdleNoCapabilityBaseline(t *testing.T) {
	blank := models.NewAgent("blank", models.WorkerAgentType, nil)
	task := models.NewTask("work", "general", models.MediumPriority)

	best, ok := fittestIdle([]models.Agent{blank}, task)
	assert.True(t, ok)
	assert.Equal(t, blank.ID, best.ID)
}

func TestAdjustProficiency(t *testing.T) {
	a := models.NewAgent("a", models.WorkerAgentType, []models.Capability{
		{Name: "coding", Proficiency: 0.5, LearningRate: 0.5},
		{Name: "testing", Proficiency: 0.5, LearningRate: 0.5},
	})

	adjustProficiency(&a, "coding", true)
	assert.InDelta(t, 0.55, a.Capabilities[0].Proficiency, 1e-9, "success bumps the matching capability")
	assert.InDelta(t, 0.5, a.Capabilities[1].Proficiency, 1e-9, "other capabilities untouched")

	adjustProficiency(&a, "coding", false)
	assert.InDelta(t, 0.525, a.Capabilities[0].Proficiency, 1e-9, "failure costs half of what success earns")
}

func TestAdjustProficiencyStaysClamped(t *testing.T) {
	a := models.NewAgent("a", models.WorkerAgentType, []models.Capability{
		{Name: "coding", Proficiency: 0.99, LearningRate: 1.0},
	})
	for i := 0; i < 10; i++ {
		adjustProficiency(&a, "coding", true)
	}
	assert.Equal(t, 1.0, a.Capabilities[0].Proficiency)

	for i := 0; i < 100; i++ {
		adjustProficiency(&a, "coding", false)
	}
	assert.Equal(t, 0.0, a.Capabilities[0].Proficiency)
}
