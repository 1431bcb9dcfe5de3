// Package hive implements the swarm coordinator: the single owner of agent
// and task state, the background tick that moves the swarm, and the
// aggregate metrics the dashboard renders.
package hive

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/internal/store"
	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/events"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/metrics"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Energy deltas applied per tick depending on agent state
const (
	energyDrainWorking  = 0.5
	energyDrainLearning = 0.3
	energyRecoveryIdle  = 0.2
)

// Coordinator owns the hive. All mutation goes through CreateAgent and
// CreateTask; everything else is derived by the tick loop.
type Coordinator struct {
	id        uuid.UUID
	cfg       config.HiveConfig
	store     store.Store
	logger    logging.Logger
	collector metrics.Collector
	publisher events.Publisher

	mu          sync.RWMutex
	swarmCenter models.Position
	metrics     models.SwarmMetrics
	lastUpdate  time.Time
	createdAt   time.Time

	rng    *rand.Rand
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator over the given store
func New(cfg config.HiveConfig, st store.Store, logger logging.Logger, collector metrics.Collector, publisher events.Publisher) *Coordinator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Coordinator{
		id:        uuid.New(),
		cfg:       cfg,
		store:     st,
		logger:    logger,
		collector: collector,
		publisher: publisher,
		createdAt: time.Now().UTC(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the background tick loop
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := c.tick(ctx); err != nil {
					c.logger.Error("hive tick failed", logging.Err(err))
				}
				if c.collector != nil {
					c.collector.ObserveDuration(metrics.HiveTickDuration.Name, start, nil)
				}
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to drain
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// CreateAgent registers a new agent. Capability rows with no tuning get the
// default proficiency and learning rate; everything is clamped on the way in.
func (c *Coordinator) CreateAgent(ctx context.Context, name string, agentType models.AgentType, neuralType models.NeuralType, capabilities []models.Capability) (models.Agent, error) {
	if name == "" {
		return models.Agent{}, fmt.Errorf("agent name is required")
	}
	if !agentType.Valid() {
		return models.Agent{}, fmt.Errorf("invalid agent type: %q", agentType)
	}

	for i, cap := range capabilities {
		if cap.Proficiency == 0 && cap.LearningRate == 0 {
			capabilities[i].Proficiency = models.DefaultProficiency
			capabilities[i].LearningRate = models.DefaultLearningRate
		}
	}

	agent := models.NewAgent(name, agentType, capabilities)
	agent.NeuralType = neuralType

	// Scatter new agents around the current center so they do not stack
	// on the origin
	c.mu.RLock()
	center := c.swarmCenter
	c.mu.RUnlock()
	agent.Position = models.Position{
		X: center.X + (c.rng.Float64()-0.5)*40,
		Y: center.Y + (c.rng.Float64()-0.5)*40,
	}

	if err := c.store.PutAgent(ctx, agent); err != nil {
		return models.Agent{}, fmt.Errorf("create agent: %w", err)
	}

	ctx = logging.WithAgentID(ctx, agent.ID.String())
	c.logger.WithContext(ctx).Info("agent created",
		logging.String("name", agent.Name),
		logging.String("type", string(agent.Type)))

	c.publish(ctx, events.NewEvent(events.EventAgentCreated, "hive", agent))
	return agent, nil
}

// CreateTask enqueues a new pending task
func (c *Coordinator) CreateTask(ctx context.Context, description, taskType string, priority models.TaskPriority) (models.Task, error) {
	if description == "" {
		return models.Task{}, fmt.Errorf("task description is required")
	}
	if taskType == "" {
		taskType = "general"
	}

	task := models.NewTask(description, taskType, priority)
	if err := c.store.PutTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	if c.collector != nil {
		c.collector.IncrementCounter(metrics.HiveTasks.Name, metrics.Labels("type", taskType))
	}

	c.logger.Info("task created",
		logging.String("task_id", task.ID.String()),
		logging.String("type", task.Type),
		logging.String("priority", task.Priority.Bucket()))

	c.publish(ctx, events.NewEvent(events.EventTaskCreated, "hive", task))
	return task, nil
}

// publish sends one event to the bus and feeds the published-events
// counter. Publish failures are logged, never surfaced to the caller.
func (c *Coordinator) publish(ctx context.Context, ev events.Event) {
	err := c.publisher.Publish(ctx, ev)
	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Warn("event publish failed",
			logging.String("type", string(ev.Type)),
			logging.Err(err))
	}
	if c.collector != nil {
		c.collector.IncrementCounter(metrics.EventsPublished.Name,
			metrics.Labels("topic", ev.Type.Topic(), "status", status))
	}
}

// Agents returns all registered agents
func (c *Coordinator) Agents(ctx context.Context) ([]models.Agent, error) {
	return c.store.ListAgents(ctx)
}

// Tasks returns all tracked tasks
func (c *Coordinator) Tasks(ctx context.Context) ([]models.Task, error) {
	return c.store.ListTasks(ctx)
}

// Status returns the coordinator snapshot served at /api/hive/status
func (c *Coordinator) Status(ctx context.Context) (models.HiveStatus, error) {
	agents, err := c.store.ListAgents(ctx)
	if err != nil {
		return models.HiveStatus{}, fmt.Errorf("hive status: %w", err)
	}

	var totalEnergy float64
	for _, a := range agents {
		totalEnergy += a.Energy
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.HiveStatus{
		ID:          c.id,
		CreatedAt:   c.createdAt,
		LastUpdate:  c.lastUpdate,
		Metrics:     c.metrics,
		SwarmCenter: c.swarmCenter,
		TotalEnergy: totalEnergy,
	}, nil
}

// Metrics returns the last computed aggregate metrics
func (c *Coordinator) Metrics() models.SwarmMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}

// tick advances the swarm one step: assign work, move agents, update
// energy and experience, then recompute the aggregate metrics.
func (c *Coordinator) tick(ctx context.Context) error {
	agents, err := c.store.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("list agents: %w", err)
	}
	tasks, err := c.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	c.assignTasks(ctx, agents, tasks)
	c.advanceAgents(ctx, agents)

	// State may have changed above; recompute from fresh reads
	agents, err = c.store.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("list agents: %w", err)
	}
	tasks, err = c.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	center := swarmCenterOf(agents)
	m := computeMetrics(agents, tasks)

	c.mu.Lock()
	c.swarmCenter = center
	c.metrics = m
	c.lastUpdate = time.Now().UTC()
	c.mu.Unlock()

	if c.collector != nil {
		c.collector.SetGauge(metrics.HiveSwarmCohesion.Name, m.SwarmCohesion, nil)
		byState := make(map[models.AgentState]int)
		for _, a := range agents {
			byState[a.State]++
		}
		for _, state := range []models.AgentState{models.AgentIdle, models.AgentWorking, models.AgentLearning, models.AgentFailed} {
			c.collector.SetGauge(metrics.HiveAgents.Name, float64(byState[state]), metrics.Labels("state", string(state)))
		}
	}
	return nil
}
