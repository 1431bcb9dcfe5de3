package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveboard/hiveboard/pkg/models"
)

func TestMemoryStoreAgentRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	agent := models.NewAgent("worker-1", models.WorkerAgentType, nil)
	require.NoError(t, st.PutAgent(ctx, agent))

	got, err := st.GetAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.Name, got.Name)

	// Updates overwrite in place
	agent.State = models.AgentWorking
	require.NoError(t, st.PutAgent(ctx, agent))
	got, err = st.GetAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AgentWorking, got.State)
}

func TestMemoryStoreNotFound(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.GetAgent(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetTask(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		a := models.NewAgent("agent", models.WorkerAgentType, nil)
		a.CreatedAt = base.Add(time.Duration(2-i) * time.Second)
		require.NoError(t, st.PutAgent(ctx, a))
	}

	agents, err := st.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 3)
	for i := 1; i < len(agents); i++ {
		assert.False(t, agents[i].CreatedAt.Before(agents[i-1].CreatedAt),
			"agents sorted by creation time")
	}
}

func TestMemoryStoreTasks(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	task := models.NewTask("do work", "general", models.MediumPriority)
	require.NoError(t, st.PutTask(ctx, task))

	tasks, err := st.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestMemoryStoreListCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	agent := models.NewAgent("worker-1", models.WorkerAgentType, nil)
	require.NoError(t, st.PutAgent(ctx, agent))

	agents, err := st.ListAgents(ctx)
	require.NoError(t, err)
	agents[0].Name = "mutated"

	got, err := st.GetAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "worker-1", got.Name, "callers must not alias stored records")
}
