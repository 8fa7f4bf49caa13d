// Package service is the mint controller: governance, the collection
// registry, fee settlement and the mint orchestrator. Every public mutation
// runs in one ledger transaction; a returned error means nothing was written.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mintgate/internal/mint/events"
	"mintgate/internal/mint/metrics"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

const maxEventPage = 500

// Service orchestrates the controller's operations.
type Service struct {
	tx       ports.StoreTx
	host     ports.Host
	verifier *signing.Verifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithVerifier swaps the signature scheme used for mint authorizations.
func WithVerifier(v *signing.Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(tx ports.StoreTx, host ports.Host, opts ...Option) *Service {
	s := &Service{
		tx:       tx,
		host:     host,
		verifier: signing.NewVerifier(signing.PersonalSign),
		logger:   slog.Default(),
		tracer:   otel.Tracer("mintgate/internal/mint/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// emit appends a typed event to the log inside the current transaction.
func (s *Service) emit(ctx context.Context, store ports.Store, actor common.Address, e events.Event) error {
	record, err := events.Record(e, actor, requestcontext.RequestID(ctx), requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event")
	}
	if err := store.AppendEvent(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record event")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// loadSettings reads governance state; an uninitialized controller refuses
// everything that depends on it.
func loadSettings(ctx context.Context, store ports.Store) (*models.Settings, error) {
	settings, err := store.Settings(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotInitialized, "controller is not initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	return settings, nil
}

func loadCollection(ctx context.Context, store ports.Store, id uint64) (*models.Collection, error) {
	c, err := store.FindCollection(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "collection %d not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collection")
	}
	return c, nil
}

func unixNow(ctx context.Context) (time.Time, int64) {
	now := requestcontext.Now(ctx)
	return now, now.Unix()
}
