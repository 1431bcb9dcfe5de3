package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/models"
)

// Key layout in Redis
const (
	keyPrefixAgent = "hiveboard:agent:"
	keyPrefixTask  = "hiveboard:task:"
	keyAgentSet    = "hiveboard:agents:all"
	keyTaskSet     = "hiveboard:tasks:all"
)

// RedisStore is a Redis-backed store for multi-instance server deployments.
// Agent entries carry a TTL so that agents of a crashed server instance age
// out instead of lingering on dashboards.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	mu        sync.RWMutex
	connected bool
}

// NewRedisStore creates a store for the given Redis settings
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: cfg.TTL,
	}
}

// Connect verifies the connection
func (s *RedisStore) Connect(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// PutAgent stores the agent and indexes it in the agent set
func (s *RedisStore) PutAgent(ctx context.Context, agent models.Agent) error {
	data, err := json.Marshal(agent)
	if err != nil {
		return fmt.Errorf("serialize agent: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, keyPrefixAgent+agent.ID.String(), data, s.ttl)
	pipe.SAdd(ctx, keyAgentSet, agent.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store agent %s: %w", agent.ID, err)
	}
	return nil
}

// GetAgent returns the agent with the given id
func (s *RedisStore) GetAgent(ctx context.Context, id uuid.UUID) (models.Agent, error) {
	data, err := s.client.Get(ctx, keyPrefixAgent+id.String()).Bytes()
	if err == redis.Nil {
		return models.Agent{}, ErrNotFound
	}
	if err != nil {
		return models.Agent{}, fmt.Errorf("get agent %s: %w", id, err)
	}

	var agent models.Agent
	if err := json.Unmarshal(data, &agent); err != nil {
		return models.Agent{}, fmt.Errorf("decode agent %s: %w", id, err)
	}
	return agent, nil
}

// ListAgents returns all live agents ordered by creation time. Entries
// whose value expired but whose set membership remains are pruned lazily.
func (s *RedisStore) ListAgents(ctx context.Context) ([]models.Agent, error) {
	ids, err := s.client.SMembers(ctx, keyAgentSet).Result()
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	agents := make([]models.Agent, 0, len(ids))
	for _, idStr := range ids {
		data, err := s.client.Get(ctx, keyPrefixAgent+idStr).Bytes()
		if err == redis.Nil {
			s.client.SRem(ctx, keyAgentSet, idStr)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get agent %s: %w", idStr, err)
		}
		var agent models.Agent
		if err := json.Unmarshal(data, &agent); err != nil {
			continue
		}
		agents = append(agents, agent)
	}

	sort.Slice(agents, func(i, j int) bool {
		if agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].ID.String() < agents[j].ID.String()
		}
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

// PutTask stores the task. Tasks do not expire.
func (s *RedisStore) PutTask(ctx context.Context, task models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("serialize task: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, keyPrefixTask+task.ID.String(), data, 0)
	pipe.SAdd(ctx, keyTaskSet, task.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store task %s: %w", task.ID, err)
	}
	return nil
}

// GetTask returns the task with the given id
func (s *RedisStore) GetTask(ctx context.Context, id uuid.UUID) (models.Task, error) {
	data, err := s.client.Get(ctx, keyPrefixTask+id.String()).Bytes()
	if err == redis.Nil {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return models.Task{}, fmt.Errorf("decode task %s: %w", id, err)
	}
	return task, nil
}

// ListTasks returns all tasks ordered by creation time
func (s *RedisStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	ids, err := s.client.SMembers(ctx, keyTaskSet).Result()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(ids))
	for _, idStr := range ids {
		data, err := s.client.Get(ctx, keyPrefixTask+idStr).Bytes()
		if err == redis.Nil {
			s.client.SRem(ctx, keyTaskSet, idStr)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get task %s: %w", idStr, err)
		}
		var task models.Task
		if err := json.Unmarshal(data, &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID.String() < tasks[j].ID.String()
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
