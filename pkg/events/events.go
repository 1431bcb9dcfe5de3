package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// EventType defines the category of event published by the server
type EventType string

const (
	EventAgentCreated EventType = "hive.agent.created"
	EventTaskCreated  EventType = "hive.task.created"
	EventAlertRaised  EventType = "hive.alert.raised"
)

// Standard topic names
const (
	TopicAgents = "hiveboard.agents"
	TopicTasks  = "hiveboard.tasks"
	TopicAlerts = "hiveboard.alerts"
)

// Event is the wire format for bus messages
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates an event, serializing the payload. A payload that does
// not marshal is a programming error and yields an empty payload.
func NewEvent(eventType EventType, source string, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}
}

// Topic returns the topic an event type maps onto
func (t EventType) Topic() string {
	switch t {
	case EventAgentCreated:
		return TopicAgents
	case EventTaskCreated:
		return TopicTasks
	case EventAlertRaised:
		return TopicAlerts
	default:
		return TopicAgents
	}
}

// Publisher is the outbound half of the event bus. The server publishes;
// downstream consumers (other dashboards, archival jobs) subscribe out of
// process.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Health() models.HealthStatus
	Close() error
}

// NopPublisher discards all events, used when the bus is disabled
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Health implements Publisher
func (NopPublisher) Health() models.HealthStatus { return models.HealthUnknown }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }
