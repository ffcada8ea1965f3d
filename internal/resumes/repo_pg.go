package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-parser/internal/resume"
)

// PGRepo implements Repo using Postgres. The record is stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, owner_id, title, status, source_file_name, source_media_type, source_format,
    source_size_bytes, storage_key, extracted_text_key, data, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res          Resume
		storageKey   sql.NullString
		extractedKey sql.NullString
		data         []byte
	)
	if err := row.Scan(
		&res.ID,
		&res.OwnerID,
		&res.Title,
		&res.Status,
		&res.SourceFileName,
		&res.SourceMediaType,
		&res.SourceFormat,
		&res.SourceSizeBytes,
		&storageKey,
		&extractedKey,
		&data,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if storageKey.Valid {
		res.StorageKey = storageKey.String
	}
	if extractedKey.Valid {
		res.ExtractedTextKey = extractedKey.String
	}
	if err := json.Unmarshal(data, &res.Data); err != nil {
		return Resume{}, fmt.Errorf("decode resume %s data: %w", res.ID, err)
	}
	return res, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    owner_id,
    title,
    status,
    source_file_name,
    source_media_type,
    source_format,
    source_size_bytes,
    storage_key,
    extracted_text_key,
    data,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	data, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	status := res.Status
	if status == "" {
		status = StatusDraft
	}
	updatedAt := res.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = res.CreatedAt
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.OwnerID,
		res.Title,
		status,
		res.SourceFileName,
		res.SourceMediaType,
		res.SourceFormat,
		res.SourceSizeBytes,
		nullString(res.StorageKey),
		nullString(res.ExtractedTextKey),
		data,
		res.CreatedAt,
		updatedAt,
	)
	return err
}

// GetByID fetches a resume by ID for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Resume, error) {
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	return scanResume(r.DB.QueryRowContext(ctx, query, ownerID, id))
}

// ListByOwner lists resumes ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + resumeColumns + `
FROM resumes
WHERE owner_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateData replaces the record, and the title when one is given.
func (r *PGRepo) UpdateData(ctx context.Context, ownerID, id, title string, data resume.Record, updatedAt time.Time) (Resume, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Resume{}, fmt.Errorf("encode resume data: %w", err)
	}
	query := `
UPDATE resumes
SET data = $1, title = COALESCE(NULLIF($2, ''), title), updated_at = $3
WHERE owner_id = $4 AND id = $5 AND deleted_at IS NULL
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query, payload, title, updatedAt, ownerID, id))
}

// Delete soft-deletes a resume.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string, deletedAt time.Time) error {
	const query = `
UPDATE resumes
SET deleted_at = $1
WHERE owner_id = $2 AND id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, deletedAt, ownerID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
