package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies events for routing and retention.
type EventCategory string

const (
	// CategoryGovernance covers owner-gated configuration changes.
	CategoryGovernance EventCategory = "governance"
	// CategoryLifecycle covers collection creation and updates.
	CategoryLifecycle EventCategory = "lifecycle"
	// CategoryIssuance covers mints.
	CategoryIssuance EventCategory = "issuance"
	// CategoryTreasury covers custody movements.
	CategoryTreasury EventCategory = "treasury"
)

// Event is one entry of the durable event log. Payload carries the typed event
// body as JSON; its field order is part of the contract with downstream
// indexers, so stores keep the bytes as given.
type Event struct {
	Sequence    int64
	ID          uuid.UUID
	Category    EventCategory
	Name        string
	Actor       string
	AggregateID string
	Payload     json.RawMessage
	RequestID   string
	Timestamp   time.Time
	PublishedAt *time.Time
}

// Envelope is the message published to the broker for each event.
type Envelope struct {
	Sequence    int64           `json:"sequence"`
	ID          string          `json:"id"`
	Category    EventCategory   `json:"category"`
	Name        string          `json:"name"`
	Actor       string          `json:"actor,omitempty"`
	AggregateID string          `json:"aggregate_id,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Timestamp   string          `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// Envelope builds the broker message for e.
func (e Event) Envelope() Envelope {
	return Envelope{
		Sequence:    e.Sequence,
		ID:          e.ID.String(),
		Category:    e.Category,
		Name:        e.Name,
		Actor:       e.Actor,
		AggregateID: e.AggregateID,
		RequestID:   e.RequestID,
		Timestamp:   e.Timestamp.UTC().Format(time.RFC3339Nano),
		Payload:     e.Payload,
	}
}

// Store appends events and pages through them in sequence order. Append
// assigns Sequence (and ID when unset) and writes them back into e.
type Store interface {
	Append(ctx context.Context, e *Event) error
	List(ctx context.Context, afterSequence int64, limit int) ([]Event, error)
}

// Outbox is the relay's view of the store.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, sequences []int64, at time.Time) error
}
