package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"locality/internal/audit"
)

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event audit.Event) error {
	const q = `
		INSERT INTO audit_events (
			id, at, actor, actor_role, action, entity, entity_id,
			outcome, reason, request_id, client_ip, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.db.ExecContext(ctx, q,
		event.ID, event.At, event.Actor, event.ActorRole, string(event.Action),
		event.Entity, event.EntityID, event.Outcome, event.Reason,
		event.RequestID, event.ClientIP, event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]audit.Event, error) {
	const q = `
		SELECT id, at, actor, actor_role, action, entity, entity_id,
		       outcome, reason, request_id, client_ip, user_agent
		FROM audit_events
		WHERE entity = $1 AND entity_id = $2
		ORDER BY at DESC`
	rows, err := s.db.QueryContext(ctx, q, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(
			&e.ID, &e.At, &e.Actor, &e.ActorRole, &action, &e.Entity, &e.EntityID,
			&e.Outcome, &e.Reason, &e.RequestID, &e.ClientIP, &e.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
