package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"locality/internal/idcard"
	"locality/pkg/platform/sentinel"
)

// PostgresStore persists identity-card requests. The one-active-request rule
// is enforced by a partial unique index on member_id where the status is
// PENDING or APPROVED; violations surface as sentinel.ErrDuplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `
	id, member_id, head_id, full_name, mother_name, age, gender, occupation,
	phone, birth_place, address, house_number, nationality, emergency_contact,
	card_type, photo_ref, status, expires_at, restored, restored_at,
	restore_payment, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, r idcard.Request) error {
	const q = `
		INSERT INTO id_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.MemberID, r.HeadID,
		r.Applicant.FullName, r.Applicant.MotherName, r.Applicant.Age,
		r.Applicant.Gender, r.Applicant.Occupation, r.Applicant.Phone,
		r.Applicant.BirthPlace, r.Applicant.Address, r.Applicant.HouseNumber,
		r.Applicant.Nationality, r.Applicant.EmergencyContact,
		r.CardType, r.PhotoRef, string(r.Status), r.ExpiresAt,
		r.Restored, r.RestoredAt, r.RestorePayment, r.CreatedAt, r.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save id request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, r idcard.Request) error {
	const q = `
		UPDATE id_requests SET
			full_name = $2, mother_name = $3, age = $4, gender = $5,
			occupation = $6, phone = $7, birth_place = $8, address = $9,
			house_number = $10, nationality = $11, emergency_contact = $12,
			card_type = $13, photo_ref = $14, status = $15, expires_at = $16,
			restored = $17, restored_at = $18, restore_payment = $19,
			updated_at = $20
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		r.ID,
		r.Applicant.FullName, r.Applicant.MotherName, r.Applicant.Age,
		r.Applicant.Gender, r.Applicant.Occupation, r.Applicant.Phone,
		r.Applicant.BirthPlace, r.Applicant.Address, r.Applicant.HouseNumber,
		r.Applicant.Nationality, r.Applicant.EmergencyContact,
		r.CardType, r.PhotoRef, string(r.Status), r.ExpiresAt,
		r.Restored, r.RestoredAt, r.RestorePayment, r.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update id request: %w", err)
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

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (idcard.Request, error) {
	const q = `SELECT ` + requestColumns + ` FROM id_requests WHERE id = $1`
	return s.scanRequest(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) FindLatestByMember(ctx context.Context, memberID, headID uuid.UUID) (idcard.Request, error) {
	const q = `SELECT ` + requestColumns + ` FROM id_requests
		WHERE member_id = $1 AND head_id = $2
		ORDER BY updated_at DESC
		LIMIT 1`
	return s.scanRequest(s.db.QueryRowContext(ctx, q, memberID, headID))
}

func (s *PostgresStore) ListByHead(ctx context.Context, headID uuid.UUID) ([]idcard.Request, error) {
	const q = `SELECT ` + requestColumns + ` FROM id_requests
		WHERE head_id = $1 ORDER BY created_at DESC`
	return s.queryRequests(ctx, q, headID)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status idcard.Status) ([]idcard.Request, error) {
	const q = `SELECT ` + requestColumns + ` FROM id_requests
		WHERE status = $1 ORDER BY created_at DESC`
	return s.queryRequests(ctx, q, string(status))
}

func (s *PostgresStore) queryRequests(ctx context.Context, q string, args ...any) ([]idcard.Request, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list id requests: %w", err)
	}
	defer rows.Close()

	var requests []idcard.Request
	for rows.Next() {
		req, err := s.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate id requests: %w", err)
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanRequest(row rowScanner) (idcard.Request, error) {
	var r idcard.Request
	var status string
	err := row.Scan(
		&r.ID, &r.MemberID, &r.HeadID,
		&r.Applicant.FullName, &r.Applicant.MotherName, &r.Applicant.Age,
		&r.Applicant.Gender, &r.Applicant.Occupation, &r.Applicant.Phone,
		&r.Applicant.BirthPlace, &r.Applicant.Address, &r.Applicant.HouseNumber,
		&r.Applicant.Nationality, &r.Applicant.EmergencyContact,
		&r.CardType, &r.PhotoRef, &status, &r.ExpiresAt,
		&r.Restored, &r.RestoredAt, &r.RestorePayment, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return idcard.Request{}, sentinel.ErrNotFound
	}
	if err != nil {
		return idcard.Request{}, fmt.Errorf("scan id request: %w", err)
	}
	r.Status = idcard.Status(status)
	return r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
