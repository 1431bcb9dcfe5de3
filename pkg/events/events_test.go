package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveboard/hiveboard/pkg/models"
)

func TestNewEvent(t *testing.T) {
	agent := models.NewAgent("worker-1", models.WorkerAgentType, nil)
	ev := NewEvent(EventAgentCreated, "hive", agent)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventAgentCreated, ev.Type)
	assert.Equal(t, "hive", ev.Source)
	assert.False(t, ev.Timestamp.IsZero())

	var decoded models.Agent
	require.NoError(t, json.Unmarshal(ev.Payload, &decoded))
	assert.Equal(t, agent.Name, decoded.Name)
}

func TestNewEventUnmarshalablePayload(t *testing.T) {
	ev := NewEvent(EventTaskCreated, "hive", func() {})
	assert.JSONEq(t, "{}", string(ev.Payload), "bad payloads degrade to an empty object")
}

func TestTopicMapping(t *testing.T) {
	assert.Equal(t, TopicAgents, EventAgentCreated.Topic())
	assert.Equal(t, TopicTasks, EventTaskCreated.Topic())
	assert.Equal(t, TopicAlerts, EventAlertRaised.Topic())
	assert.Equal(t, TopicAgents, EventType("unknown").Topic())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(EventAgentCreated, "t", nil)))
	assert.Equal(t, models.HealthUnknown, p.Health())
	assert.NoError(t, p.Close())
}
