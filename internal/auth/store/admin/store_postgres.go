package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"locality/internal/auth"
	"locality/pkg/platform/sentinel"
)

// PostgresStore persists admin accounts. Email uniqueness is backed by a
// unique index; violations surface as sentinel.ErrDuplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const adminColumns = `id, email, password_hash, full_name, photo_ref, created_at`

func (s *PostgresStore) Save(ctx context.Context, a auth.Admin) error {
	const q = `
		INSERT INTO admins (` + adminColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			full_name = EXCLUDED.full_name,
			photo_ref = EXCLUDED.photo_ref`
	_, err := s.db.ExecContext(ctx, q,
		a.ID, a.Email, a.PasswordHash, a.FullName, a.PhotoRef, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (auth.Admin, error) {
	const q = `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return s.scan(s.db.QueryRowContext(ctx, q, email))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (auth.Admin, error) {
	const q = `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return s.scan(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) scan(row *sql.Row) (auth.Admin, error) {
	var a auth.Admin
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.PhotoRef, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Admin{}, sentinel.ErrNotFound
	}
	if err != nil {
		return auth.Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
