package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"locality/internal/directory"
	"locality/pkg/platform/sentinel"
)

// PostgresStore persists heads and members in PostgreSQL. Email uniqueness is
// backed by a unique index; violations surface as sentinel.ErrDuplicate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const headColumns = `
	id, email, password_hash, full_name, phone, house_number, family_size,
	photo_ref, is_removed, created_at, updated_at`

func (s *PostgresStore) SaveHead(ctx context.Context, head directory.FamilyHead) error {
	const q = `
		INSERT INTO family_heads (` + headColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, q,
		head.ID, head.Email, head.PasswordHash, head.FullName, head.Phone,
		head.HouseNumber, head.FamilySize, head.PhotoRef, head.IsRemoved,
		head.CreatedAt, head.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save family head: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateHead(ctx context.Context, head directory.FamilyHead) error {
	const q = `
		UPDATE family_heads SET
			email = $2, password_hash = $3, full_name = $4, phone = $5,
			house_number = $6, family_size = $7, photo_ref = $8,
			is_removed = $9, updated_at = $10
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		head.ID, head.Email, head.PasswordHash, head.FullName, head.Phone,
		head.HouseNumber, head.FamilySize, head.PhotoRef, head.IsRemoved,
		head.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update family head: %w", err)
	}
	return ensureRowTouched(res)
}

func (s *PostgresStore) FindHeadByID(ctx context.Context, id uuid.UUID) (directory.FamilyHead, error) {
	const q = `SELECT ` + headColumns + ` FROM family_heads WHERE id = $1`
	return s.scanHead(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) FindHeadByEmail(ctx context.Context, email string) (directory.FamilyHead, error) {
	const q = `SELECT ` + headColumns + ` FROM family_heads WHERE email = $1`
	return s.scanHead(s.db.QueryRowContext(ctx, q, email))
}

func (s *PostgresStore) ListHeads(ctx context.Context, includeRemoved bool) ([]directory.FamilyHead, error) {
	q := `SELECT ` + headColumns + ` FROM family_heads`
	if !includeRemoved {
		q += ` WHERE NOT is_removed`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list family heads: %w", err)
	}
	defer rows.Close()

	var heads []directory.FamilyHead
	for rows.Next() {
		head, err := s.scanHead(rows)
		if err != nil {
			return nil, err
		}
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family heads: %w", err)
	}
	return heads, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanHead(row rowScanner) (directory.FamilyHead, error) {
	var head directory.FamilyHead
	err := row.Scan(
		&head.ID, &head.Email, &head.PasswordHash, &head.FullName, &head.Phone,
		&head.HouseNumber, &head.FamilySize, &head.PhotoRef, &head.IsRemoved,
		&head.CreatedAt, &head.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.FamilyHead{}, sentinel.ErrNotFound
	}
	if err != nil {
		return directory.FamilyHead{}, fmt.Errorf("scan family head: %w", err)
	}
	return head, nil
}

const memberColumns = `
	id, head_id, full_name, birth_date, member_type, relationship, education,
	occupation, status, tenure, household_role, approval, is_removed,
	birth_cert_ref, death_cert_ref, marriage_cert_ref, photo_ref,
	rental_agreement_ref, created_at, updated_at`

func (s *PostgresStore) SaveMember(ctx context.Context, m directory.Member) error {
	const q = `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)`
	_, err := s.db.ExecContext(ctx, q,
		m.ID, m.HeadID, m.FullName, m.BirthDate, string(m.Type), m.Relationship,
		m.Education, m.Occupation, string(m.Status), string(m.Tenure),
		string(m.Role), string(m.Approval), m.IsRemoved,
		m.BirthCertRef, m.DeathCertRef, m.MarriageCertRef, m.PhotoRef,
		m.RentalAgreementRef, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateMember(ctx context.Context, m directory.Member) error {
	const q = `
		UPDATE members SET
			full_name = $2, birth_date = $3, member_type = $4, relationship = $5,
			education = $6, occupation = $7, status = $8, tenure = $9,
			household_role = $10, approval = $11, is_removed = $12,
			birth_cert_ref = $13, death_cert_ref = $14, marriage_cert_ref = $15,
			photo_ref = $16, rental_agreement_ref = $17, updated_at = $18
		WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q,
		m.ID, m.FullName, m.BirthDate, string(m.Type), m.Relationship,
		m.Education, m.Occupation, string(m.Status), string(m.Tenure),
		string(m.Role), string(m.Approval), m.IsRemoved,
		m.BirthCertRef, m.DeathCertRef, m.MarriageCertRef, m.PhotoRef,
		m.RentalAgreementRef, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return ensureRowTouched(res)
}

func (s *PostgresStore) FindMemberByID(ctx context.Context, id uuid.UUID) (directory.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return s.scanMember(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) ListMembersByHead(ctx context.Context, headID uuid.UUID, includeRemoved bool) ([]directory.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM members WHERE head_id = $1`
	if !includeRemoved {
		q += ` AND NOT is_removed`
	}
	q += ` ORDER BY created_at DESC`
	return s.queryMembers(ctx, q, headID)
}

func (s *PostgresStore) ListMembersByApproval(ctx context.Context, approval directory.ApprovalStatus) ([]directory.Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members
		WHERE approval = $1 AND NOT is_removed
		ORDER BY created_at DESC`
	return s.queryMembers(ctx, q, string(approval))
}

func (s *PostgresStore) queryMembers(ctx context.Context, q string, args ...any) ([]directory.Member, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []directory.Member
	for rows.Next() {
		member, err := s.scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func (s *PostgresStore) scanMember(row rowScanner) (directory.Member, error) {
	var m directory.Member
	var memberType, status, tenure, role, approval string
	err := row.Scan(
		&m.ID, &m.HeadID, &m.FullName, &m.BirthDate, &memberType, &m.Relationship,
		&m.Education, &m.Occupation, &status, &tenure, &role, &approval,
		&m.IsRemoved, &m.BirthCertRef, &m.DeathCertRef, &m.MarriageCertRef,
		&m.PhotoRef, &m.RentalAgreementRef, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Member{}, sentinel.ErrNotFound
	}
	if err != nil {
		return directory.Member{}, fmt.Errorf("scan member: %w", err)
	}
	m.Type = directory.MemberType(memberType)
	m.Status = directory.MemberStatus(status)
	m.Tenure = directory.Tenure(tenure)
	m.Role = directory.HouseholdRole(role)
	m.Approval = directory.ApprovalStatus(approval)
	return m, nil
}

func ensureRowTouched(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects postgres unique-index violations (class 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
