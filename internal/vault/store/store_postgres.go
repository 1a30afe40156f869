package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"locality/internal/vault"
)

// PostgresStore persists vault documents. Insert and select only; the table
// is append-only by construction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, doc vault.Document) error {
	const q = `
		INSERT INTO vault_documents (id, head_id, member_id, label, file_ref, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, q,
		doc.ID, doc.HeadID, doc.MemberID, doc.Label, doc.FileRef, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("append vault document: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByHead(ctx context.Context, headID uuid.UUID) ([]vault.Document, error) {
	const q = `
		SELECT id, head_id, member_id, label, file_ref, uploaded_at
		FROM vault_documents
		WHERE head_id = $1
		ORDER BY uploaded_at DESC`
	rows, err := s.db.QueryContext(ctx, q, headID)
	if err != nil {
		return nil, fmt.Errorf("list vault documents: %w", err)
	}
	defer rows.Close()

	var docs []vault.Document
	for rows.Next() {
		var doc vault.Document
		if err := rows.Scan(&doc.ID, &doc.HeadID, &doc.MemberID, &doc.Label, &doc.FileRef, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan vault document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault documents: %w", err)
	}
	return docs, nil
}
