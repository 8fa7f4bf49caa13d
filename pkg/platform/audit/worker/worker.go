package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/circuit"
)

//go:generate mockgen -source=worker.go -destination=mocks/mocks.go -package=mocks Producer

// Producer is the subset of *kgo.Client the relay needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
	// openBackoff multiplies the polling interval while the breaker is open.
	openBackoff = 10
)

// Relay moves committed outbox events to Kafka in sequence order and marks
// them published. Delivery is at-least-once: a crash between produce and mark
// republishes the batch, so consumers dedupe on the envelope id.
type Relay struct {
	outbox    audit.Outbox
	producer  Producer
	topic     string
	batchSize int
	interval  time.Duration
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		r.breaker = b
	}
}

func NewRelay(outbox audit.Outbox, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("outbox-relay", circuit.WithFailureThreshold(3))
	}
	return r
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "outbox relay failed",
				"error", err,
				"breaker", r.breaker.State().String(),
			)
		}

		next := r.interval
		switch {
		case r.breaker.IsOpen():
			next = r.interval * openBackoff
		case n == r.batchSize:
			// More rows are likely waiting.
			next = 0
		}
		timer.Reset(next)
	}
}

// RelayOnce publishes one batch and returns how many events were marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	records := make([]*kgo.Record, 0, len(pending))
	for _, e := range pending {
		value, err := json.Marshal(e.Envelope())
		if err != nil {
			return 0, fmt.Errorf("marshal event %d: %w", e.Sequence, err)
		}
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(e.AggregateID),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "event", Value: []byte(e.Name)},
				{Key: "category", Value: []byte(e.Category)},
			},
		})
	}

	results := r.producer.ProduceSync(ctx, records...)

	// Mark the prefix that made it so sequence order is kept on retry.
	published := make([]int64, 0, len(pending))
	var produceErr error
	for i, res := range results {
		if res.Err != nil {
			produceErr = res.Err
			break
		}
		published = append(published, pending[i].Sequence)
	}

	if len(published) > 0 {
		if err := r.outbox.MarkPublished(ctx, published, time.Now()); err != nil {
			r.recordFailure()
			return 0, fmt.Errorf("mark events published: %w", err)
		}
		r.metrics.addRelayed(len(published))
	}
	if produceErr != nil {
		r.recordFailure()
		r.metrics.incFailed()
		return len(published), fmt.Errorf("produce event %d: %w", pending[len(published)].Sequence, produceErr)
	}

	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "outbox relay recovered")
		r.metrics.setBreakerOpen(false)
	}
	return len(published), nil
}

func (r *Relay) recordFailure() {
	if _, change := r.breaker.RecordFailure(); change.Opened {
		r.logger.Warn("outbox relay circuit opened")
		r.metrics.setBreakerOpen(true)
	}
}
