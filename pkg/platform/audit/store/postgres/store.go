package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "mintgate/pkg/platform/audit"
	txcontext "mintgate/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table inside the caller's transaction and
// published to Kafka by the relay.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

// Append writes an event to the outbox table. The payload column is JSON rather
// than JSONB so the stored bytes keep their field order.
func (s *Store) Append(ctx context.Context, e *audit.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query := `
		INSERT INTO outbox (id, category, event_type, actor, aggregate_id, request_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING sequence
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		e.ID,
		string(e.Category),
		e.Name,
		e.Actor,
		e.AggregateID,
		e.RequestID,
		[]byte(e.Payload),
		e.Timestamp,
	).Scan(&e.Sequence)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// List returns events with sequence greater than afterSequence, oldest first.
func (s *Store) List(ctx context.Context, afterSequence int64, limit int) ([]audit.Event, error) {
	query := `
		SELECT sequence, id, category, event_type, actor, aggregate_id, request_id,
		       payload, created_at, published_at
		FROM outbox
		WHERE sequence > $1
		ORDER BY sequence ASC
		LIMIT $2
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Pending returns unpublished events, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT sequence, id, category, event_type, actor, aggregate_id, request_id,
		       payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY sequence ASC
		LIMIT $1
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// MarkPublished stamps the given sequences as relayed.
func (s *Store) MarkPublished(ctx context.Context, sequences []int64, at time.Time) error {
	if len(sequences) == 0 {
		return nil
	}
	query := `UPDATE outbox SET published_at = $1 WHERE sequence = ANY($2) AND published_at IS NULL`
	if _, err := s.execer(ctx).ExecContext(ctx, query, at, pq.Int64Array(sequences)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	events := []audit.Event{}
	for rows.Next() {
		var (
			e           audit.Event
			category    string
			payload     []byte
			publishedAt sql.NullTime
		)
		if err := rows.Scan(
			&e.Sequence, &e.ID, &category, &e.Name, &e.Actor, &e.AggregateID, &e.RequestID,
			&payload, &e.Timestamp, &publishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.Payload = payload
		if publishedAt.Valid {
			t := publishedAt.Time
			e.PublishedAt = &t
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return events, nil
}
