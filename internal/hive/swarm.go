package hive

import (
	"context"
	"time"

	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Proficiency adjustments applied when a task finishes. Success teaches
// faster than failure punishes.
const (
	successAdjustFactor = 0.1
	failureAdjustFactor = 0.05
)

// centerPull is the per-tick fraction of the distance to the swarm center
// an agent drifts
const centerPull = 0.1

// swarmCenterOf returns the mean position of all agents, the origin when
// there are none
func swarmCenterOf(agents []models.Agent) models.Position {
	if len(agents) == 0 {
		return models.Position{}
	}
	var cx, cy float64
	for _, a := range agents {
		cx += a.Position.X
		cy += a.Position.Y
	}
	n := float64(len(agents))
	return models.Position{X: cx / n, Y: cy / n}
}

// computeMetrics derives the aggregate snapshot from current agents and
// tasks. Every ratio stays in [0,1] regardless of input.
func computeMetrics(agents []models.Agent, tasks []models.Task) models.SwarmMetrics {
	m := models.SwarmMetrics{TotalAgents: len(agents)}

	for _, t := range tasks {
		switch t.Status {
		case models.TaskCompleted:
			m.CompletedTasks++
		case models.TaskFailed:
			m.FailedTasks++
		}
	}

	if len(agents) == 0 {
		m.SwarmCohesion = 1.0
		return m
	}

	var totalPerformance float64
	totalExperiences := 0
	for _, a := range agents {
		if a.State == models.AgentWorking {
			m.ActiveAgents++
		}
		totalPerformance += a.MeanProficiency()
		totalExperiences += a.ExperienceCount
	}
	m.AveragePerformance = models.Clamp01(totalPerformance / float64(len(agents)))

	// Cohesion falls off with the mean pairwise distance, normalized so
	// that a spread of ~100 units halves it
	var totalDistance float64
	pairs := 0
	for i := range agents {
		for j := range agents {
			if i == j {
				continue
			}
			totalDistance += agents[i].Position.DistanceTo(agents[j].Position)
			pairs++
		}
	}
	if pairs > 0 {
		m.SwarmCohesion = 1.0 / (1.0 + totalDistance/float64(pairs)/100.0)
	} else {
		m.SwarmCohesion = 1.0
	}

	m.LearningProgress = models.Clamp01(float64(totalExperiences) / float64(len(agents)*100))
	return m
}

// assignTasks hands pending tasks to the fittest idle agents and settles
// in-progress tasks whose holder finished the work.
func (c *Coordinator) assignTasks(ctx context.Context, agents []models.Agent, tasks []models.Task) {
	byID := make(map[string]models.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID.String()] = a
	}

	for _, task := range tasks {
		switch task.Status {
		case models.TaskPending:
			best, ok := fittestIdle(agents, task)
			if !ok {
				continue
			}
			task.Status = models.TaskInProgress
			task.AssignedAgent = best.ID.String()
			best.State = models.AgentWorking
			best.LastActive = time.Now().UTC()

			if err := c.store.PutTask(ctx, task); err != nil {
				c.logger.Error("task assignment failed", logging.Err(err))
				continue
			}
			if err := c.store.PutAgent(ctx, best); err != nil {
				c.logger.Error("agent state update failed", logging.Err(err))
			}
			// Keep the local view coherent within this tick
			for i := range agents {
				if agents[i].ID == best.ID {
					agents[i] = best
				}
			}
			byID[best.ID.String()] = best

		case models.TaskInProgress:
			holder, ok := byID[task.AssignedAgent]
			if !ok || holder.State != models.AgentWorking {
				// Holder vanished or failed; requeue
				task.Status = models.TaskPending
				task.AssignedAgent = ""
				if err := c.store.PutTask(ctx, task); err != nil {
					c.logger.Error("task requeue failed", logging.Err(err))
				}
				continue
			}
			c.settleTask(ctx, task, holder)
		}
	}
}

// settleTask rolls the outcome of an in-progress task against its holder's
// proficiency and records the result on both sides.
func (c *Coordinator) settleTask(ctx context.Context, task models.Task, holder models.Agent) {
	// Higher proficiency finishes sooner and fails less. The roll keeps a
	// floor so even a novice eventually completes something.
	fitness := holder.MeanProficiency()
	if fitness < 0.1 {
		fitness = 0.1
	}
	if c.rng.Float64() > fitness*0.5 {
		return // still working this tick
	}

	success := c.rng.Float64() < 0.5+fitness*0.5
	now := time.Now().UTC()
	if success {
		task.Status = models.TaskCompleted
	} else {
		task.Status = models.TaskFailed
	}
	task.CompletedAt = &now

	holder.State = models.AgentIdle
	holder.RecordExperience()
	adjustProficiency(&holder, task.Type, success)

	if err := c.store.PutTask(ctx, task); err != nil {
		c.logger.Error("task settle failed", logging.Err(err))
		return
	}
	if err := c.store.PutAgent(ctx, holder); err != nil {
		c.logger.Error("agent settle failed", logging.Err(err))
	}
}

// advanceAgents drifts every agent toward the swarm center with a little
// jitter, applies energy dynamics, and ticks learning agents forward.
func (c *Coordinator) advanceAgents(ctx context.Context, agents []models.Agent) {
	center := swarmCenterOf(agents)

	for _, a := range agents {
		a.Position.X += (center.X-a.Position.X)*centerPull + (c.rng.Float64()-0.5)*c.cfg.PositionJitter
		a.Position.Y += (center.Y-a.Position.Y)*centerPull + (c.rng.Float64()-0.5)*c.cfg.PositionJitter

		switch a.State {
		case models.AgentWorking:
			a.SetEnergy(a.Energy - energyDrainWorking)
		case models.AgentLearning:
			a.SetEnergy(a.Energy - energyDrainLearning)
			a.RecordExperience()
		case models.AgentIdle:
			a.SetEnergy(a.Energy + energyRecoveryIdle)
		}

		// Exhausted agents fail until they recover
		if a.Energy <= 0 && a.State != models.AgentFailed {
			a.State = models.AgentFailed
		} else if a.State == models.AgentFailed && a.Energy >= models.MaxEnergy/4 {
			a.State = models.AgentIdle
		}
		if a.State == models.AgentFailed {
			a.SetEnergy(a.Energy + energyRecoveryIdle)
		}

		if err := c.store.PutAgent(ctx, a); err != nil {
			c.logger.Error("agent advance failed",
				logging.String("agent_id", a.ID.String()),
				logging.Err(err))
		}
	}
}

// fittestIdle picks the idle agent with the best mean proficiency. Learners
// are skipped; they improve instead of working.
func fittestIdle(agents []models.Agent, _ models.Task) (models.Agent, bool) {
	var best models.Agent
	bestFitness := -1.0
	for _, a := range agents {
		if a.State != models.AgentIdle || a.Type == models.LearnerAgentType {
			continue
		}
		fitness := a.MeanProficiency()
		if len(a.Capabilities) == 0 {
			fitness = 0.5
		}
		if fitness > bestFitness {
			best = a
			bestFitness = fitness
		}
	}
	return best, bestFitness >= 0
}

func adjustProficiency(a *models.Agent, taskType string, success bool) {
	for i := range a.Capabilities {
		if a.Capabilities[i].Name != taskType {
			continue
		}
		adjustment := a.Capabilities[i].LearningRate * successAdjustFactor
		if !success {
			adjustment = -a.Capabilities[i].LearningRate * failureAdjustFactor
		}
		a.Capabilities[i].Proficiency = models.Clamp01(a.Capabilities[i].Proficiency + adjustment)
	}
}
