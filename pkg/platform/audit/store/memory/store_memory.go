package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	audit "mintgate/pkg/platform/audit"
)

// Store is an in-memory event log. It is not synchronized: the owner guards it
// with its own lock, and Clone gives transactional callers a private copy to
// commit or discard.
type Store struct {
	events []audit.Event
}

func NewStore() *Store {
	return &Store{}
}

// Clone returns an independent copy of the log.
func (s *Store) Clone() *Store {
	events := make([]audit.Event, len(s.events))
	copy(events, s.events)
	return &Store{events: events}
}

func (s *Store) Append(_ context.Context, e *audit.Event) error {
	e.Sequence = int64(len(s.events)) + 1
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *Store) List(_ context.Context, afterSequence int64, limit int) ([]audit.Event, error) {
	if afterSequence < 0 {
		afterSequence = 0
	}
	if afterSequence >= int64(len(s.events)) {
		return []audit.Event{}, nil
	}
	end := len(s.events)
	if limit > 0 && int(afterSequence)+limit < end {
		end = int(afterSequence) + limit
	}
	return append([]audit.Event{}, s.events[afterSequence:end]...), nil
}

func (s *Store) Pending(_ context.Context, limit int) ([]audit.Event, error) {
	var out []audit.Event
	for _, e := range s.events {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(_ context.Context, sequences []int64, at time.Time) error {
	for _, seq := range sequences {
		if seq < 1 || seq > int64(len(s.events)) {
			continue
		}
		published := at
		s.events[seq-1].PublishedAt = &published
	}
	return nil
}
