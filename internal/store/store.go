// Package store provides the injectable state container behind the hive
// coordinator: typed read selectors plus a minimal mutation surface, so
// consumers never reach through a global singleton.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Store holds agents and tasks for the coordinator. Implementations must be
// safe for concurrent use.
type Store interface {
	// Agents
	PutAgent(ctx context.Context, agent models.Agent) error
	GetAgent(ctx context.Context, id uuid.UUID) (models.Agent, error)
	ListAgents(ctx context.Context) ([]models.Agent, error)

	// Tasks
	PutTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)

	Close() error
}
