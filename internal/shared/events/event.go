package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the interface that all domain events must implement.
type Event interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	// AggregateID is the public id of the record that produced the event,
	// e.g. PAY_1A2B3C4D.
	AggregateID() string
	AggregateType() string
}

// BaseEvent provides a base implementation of the Event interface.
// Embed it in concrete events.
type BaseEvent struct {
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	Timestamp     time.Time `json:"occurred_at"`
	AggregateRef  string    `json:"aggregate_id"`
	AggregateName string    `json:"aggregate_type"`
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateRef }
func (e BaseEvent) AggregateType() string { return e.AggregateName }

// NewBaseEvent creates a new BaseEvent with the given parameters.
func NewBaseEvent(eventType, aggregateID, aggregateType string) BaseEvent {
	return BaseEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		AggregateRef:  aggregateID,
		AggregateName: aggregateType,
	}
}
