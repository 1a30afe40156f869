package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"locality/internal/platform/metrics"
	"locality/pkg/requestcontext"
)

// Store persists events. Append-only; nothing in the system updates or
// deletes an audit row.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]Event, error)
}

// Publisher fans events out beyond the local store (Kafka). Optional.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Service accepts events from workflow code and hands them to the worker via
// a bounded buffer. Record never blocks the calling request: when the buffer
// is full the event is dropped and counted.
type Service struct {
	inbox   chan Event
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics, bufferSize int) *Service {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Service{
		inbox:   make(chan Event, bufferSize),
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Record enriches the event from the request context and enqueues it.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = requestcontext.Now(ctx).UTC()
	}
	if event.Actor == uuid.Nil {
		event.Actor = requestcontext.PrincipalID(ctx)
	}
	if event.ActorRole == "" {
		event.ActorRole = string(requestcontext.PrincipalRole(ctx))
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)

	select {
	case s.inbox <- event:
	default:
		s.metrics.AuditDropped.Inc()
		s.logger.Warn("audit buffer full, event dropped",
			"action", string(event.Action),
			"entity", event.Entity,
		)
	}
}

// ListByEntity returns the audit trail for one record, newest first.
func (s *Service) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]Event, error) {
	return s.store.ListByEntity(ctx, entity, entityID)
}

// Run drains the inbox until ctx is cancelled, persisting each event and
// publishing it when a publisher is configured. Store failures are logged,
// not returned: losing one audit row must not kill the worker.
func (s *Service) Run(ctx context.Context, publisher Publisher) error {
	for {
		select {
		case <-ctx.Done():
			s.drain(publisher)
			return ctx.Err()
		case event := <-s.inbox:
			s.handle(ctx, publisher, event)
		}
	}
}

// drain gives buffered events one last write on shutdown.
func (s *Service) drain(publisher Publisher) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-s.inbox:
			s.handle(ctx, publisher, event)
		default:
			return
		}
	}
}

func (s *Service) handle(ctx context.Context, publisher Publisher, event Event) {
	if err := s.store.Append(ctx, event); err != nil {
		s.logger.Error("failed to persist audit event",
			"error", err,
			"action", string(event.Action),
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish audit event",
			"error", err,
			"action", string(event.Action),
		)
	}
}
