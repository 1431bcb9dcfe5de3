package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// MemoryStore is the default in-process store backend
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]models.Agent
	tasks  map[uuid.UUID]models.Task
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents: make(map[uuid.UUID]models.Agent),
		tasks:  make(map[uuid.UUID]models.Task),
	}
}

// PutAgent inserts or replaces an agent
func (s *MemoryStore) PutAgent(_ context.Context, agent models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = agent
	return nil
}

// GetAgent returns the agent with the given id
func (s *MemoryStore) GetAgent(_ context.Context, id uuid.UUID) (models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[id]
	if !ok {
		return models.Agent{}, ErrNotFound
	}
	return agent, nil
}

// ListAgents returns all agents ordered by creation time
func (s *MemoryStore) ListAgents(_ context.Context) ([]models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]models.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].ID.String() < agents[j].ID.String()
		}
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})
	return agents, nil
}

// PutTask inserts or replaces a task
func (s *MemoryStore) PutTask(_ context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

// GetTask returns the task with the given id
func (s *MemoryStore) GetTask(_ context.Context, id uuid.UUID) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

// ListTasks returns all tasks ordered by creation time
func (s *MemoryStore) ListTasks(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID.String() < tasks[j].ID.String()
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Close implements Store
func (s *MemoryStore) Close() error { return nil }
