package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// ListImports returns the import history, newest first.
func (s *Store) ListImports(ctx context.Context) ([]domain.ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, bookmark_ids, created_count, updated_count, additional_tags, created_at
		FROM imports
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying imports: %w", err)
	}
	defer rows.Close()

	records := []domain.ImportRecord{}
	for rows.Next() {
		rec, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetImport returns one import record, or NotFound.
func (s *Store) GetImport(ctx context.Context, id int64) (*domain.ImportRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, bookmark_ids, created_count, updated_count, additional_tags, created_at
		FROM imports WHERE id = ?`, id)
	rec, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("import")
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteImport removes an import record. Deleting an absent record is not
// an error; undo couples the record delete with the bookmark deletes.
func (s *Store) DeleteImport(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting import: %w", err)
	}
	return nil
}

// InsertImportRecord persists the record describing the current batch. It
// runs inside the import transaction so a failed batch never leaves an
// orphaned record.
func (t *Tx) InsertImportRecord(ctx context.Context, rec *domain.ImportRecord) (int64, error) {
	ids, err := json.Marshal(rec.BookmarkIDs)
	if err != nil {
		return 0, fmt.Errorf("encoding bookmark ids: %w", err)
	}

	res, err := t.q.ExecContext(ctx, `
		INSERT INTO imports (filename, bookmark_ids, created_count, updated_count, additional_tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(rec.Filename), string(ids), rec.CreatedCount, rec.UpdatedCount,
		nullString(rec.AdditionalTags), t.timestamp())
	if err != nil {
		return 0, fmt.Errorf("inserting import record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading import id: %w", err)
	}
	return id, nil
}

func scanImport(row rowScanner) (*domain.ImportRecord, error) {
	var (
		rec            domain.ImportRecord
		filename, tags sql.NullString
		idsJSON        string
		created        string
	)
	if err := row.Scan(&rec.ID, &filename, &idsJSON, &rec.CreatedCount, &rec.UpdatedCount, &tags, &created); err != nil {
		return nil, err
	}
	rec.Filename = filename.String
	rec.AdditionalTags = tags.String
	rec.CreatedAt = parseTime(created)
	if err := json.Unmarshal([]byte(idsJSON), &rec.BookmarkIDs); err != nil {
		rec.BookmarkIDs = []int64{}
	}
	if rec.BookmarkIDs == nil {
		rec.BookmarkIDs = []int64{}
	}
	return &rec, nil
}
