package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"locality/internal/certificate"
	"locality/pkg/platform/sentinel"
)

// PostgresStore persists certificate requests for all four kinds in one
// table. A partial unique index on (member_id, kind) where the status is
// active enforces the duplicate rule; violations surface as ErrDuplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const certColumns = `
	id, kind, member_id, head_id, status, document_ref, event_date,
	event_place, party_name, party_id, spouse_name, spouse_id,
	registrar_note, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, c certificate.Certificate) error {
	const q = `
		INSERT INTO certificates (` + certColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := s.db.ExecContext(ctx, q,
		c.ID, string(c.Kind), c.MemberID, c.HeadID, string(c.Status),
		c.DocumentRef, c.Details.EventDate, c.Details.EventPlace,
		c.Details.PartyName, c.Details.PartyID, c.Details.SpouseName,
		c.Details.SpouseID, c.Details.RegistrarNote, c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c certificate.Certificate) error {
	const q = `
		UPDATE certificates SET
			status = $2, document_ref = $3, event_date = $4, event_place = $5,
			party_name = $6, party_id = $7, spouse_name = $8, spouse_id = $9,
			registrar_note = $10, updated_at = $11
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		c.ID, string(c.Status), c.DocumentRef, c.Details.EventDate,
		c.Details.EventPlace, c.Details.PartyName, c.Details.PartyID,
		c.Details.SpouseName, c.Details.SpouseID, c.Details.RegistrarNote,
		c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (certificate.Certificate, error) {
	const q = `SELECT ` + certColumns + ` FROM certificates WHERE id = $1`
	return s.scanCert(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) FindActiveByMember(ctx context.Context, memberID uuid.UUID, kind certificate.Kind) (certificate.Certificate, error) {
	const q = `SELECT ` + certColumns + ` FROM certificates
		WHERE member_id = $1 AND kind = $2 AND status IN ('PENDING', 'APPROVED')
		LIMIT 1`
	return s.scanCert(s.db.QueryRowContext(ctx, q, memberID, string(kind)))
}

func (s *PostgresStore) ListByHead(ctx context.Context, headID uuid.UUID, kind certificate.Kind) ([]certificate.Certificate, error) {
	const q = `SELECT ` + certColumns + ` FROM certificates
		WHERE head_id = $1 AND kind = $2 ORDER BY created_at DESC`
	return s.queryCerts(ctx, q, headID, string(kind))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, kind certificate.Kind, status certificate.Status) ([]certificate.Certificate, error) {
	const q = `SELECT ` + certColumns + ` FROM certificates
		WHERE kind = $1 AND status = $2 ORDER BY created_at DESC`
	return s.queryCerts(ctx, q, string(kind), string(status))
}

func (s *PostgresStore) ListActiveByMemberAll(ctx context.Context, memberID uuid.UUID) ([]certificate.Certificate, error) {
	const q = `SELECT ` + certColumns + ` FROM certificates
		WHERE member_id = $1 AND status IN ('PENDING', 'APPROVED')
		ORDER BY created_at DESC`
	return s.queryCerts(ctx, q, memberID)
}

func (s *PostgresStore) queryCerts(ctx context.Context, q string, args ...any) ([]certificate.Certificate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var certs []certificate.Certificate
	for rows.Next() {
		cert, err := s.scanCert(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanCert(row rowScanner) (certificate.Certificate, error) {
	var c certificate.Certificate
	var kind, status string
	err := row.Scan(
		&c.ID, &kind, &c.MemberID, &c.HeadID, &status, &c.DocumentRef,
		&c.Details.EventDate, &c.Details.EventPlace, &c.Details.PartyName,
		&c.Details.PartyID, &c.Details.SpouseName, &c.Details.SpouseID,
		&c.Details.RegistrarNote, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return certificate.Certificate{}, sentinel.ErrNotFound
	}
	if err != nil {
		return certificate.Certificate{}, fmt.Errorf("scan certificate: %w", err)
	}
	c.Kind = certificate.Kind(kind)
	c.Status = certificate.Status(status)
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
