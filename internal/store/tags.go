package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// GetOrCreateTag returns the id of the tag with the given (raw) name,
// creating it if absent. The name is normalized first.
func (s *Store) GetOrCreateTag(ctx context.Context, name string) (int64, error) {
	name = domain.NormalizeTag(name)
	if name == "" {
		return 0, domain.Validationf("tag", "tag name is empty")
	}
	return getOrCreateTag(ctx, s.db, name)
}

// ReplaceBookmarkTags replaces the bookmark's tag set with the given names
// (normalized, deduplicated). An empty list removes all associations.
func (s *Store) ReplaceBookmarkTags(ctx context.Context, bookmarkID int64, names []string) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		return replaceBookmarkTags(ctx, tx.q, bookmarkID, domain.NormalizeTags(names))
	})
}

// ListTagsWithCounts lists tags with the number of visible bookmarks
// carrying each. Zero-count tags never appear. In query mode (autocomplete)
// the threshold is ignored and output is capped at 10 rows; All mode
// bypasses the threshold for the management view.
func (s *Store) ListTagsWithCounts(ctx context.Context, opts domain.TagListOptions) ([]domain.TagCount, error) {
	query := `
		SELECT t.name, COUNT(DISTINCT bt.bookmark_id) AS cnt
		FROM tags t
		JOIN bookmark_tags bt ON bt.tag_id = t.id
		JOIN bookmarks b ON b.id = bt.bookmark_id`

	var (
		clauses []string
		args    []interface{}
	)
	if !opts.IncludePrivate {
		clauses = append(clauses, `b.is_private = 0`)
	}
	if opts.Query != "" {
		clauses = append(clauses, `t.name LIKE ?`)
		args = append(args, "%"+opts.Query+"%")
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += ` GROUP BY t.id, t.name`
	if opts.Query == "" && !opts.All && opts.Threshold > 0 {
		query += ` HAVING COUNT(DISTINCT bt.bookmark_id) >= ?`
		args = append(args, opts.Threshold)
	}
	query += ` ORDER BY cnt DESC, t.name ASC`
	if opts.Query != "" {
		query += ` LIMIT 10`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.TagCount{}
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes the tag with the given (raw) name and all its bookmark
// associations. Returns NotFound when no such tag exists.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	name = domain.NormalizeTag(name)
	if name == "" {
		return domain.NotFound("tag")
	}

	return s.WithTx(ctx, func(tx *Tx) error {
		var id int64
		err := tx.q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("tag")
		}
		if err != nil {
			return fmt.Errorf("looking up tag: %w", err)
		}

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM bookmark_tags WHERE tag_id = ?`, id); err != nil {
			return fmt.Errorf("deleting tag associations: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting tag: %w", err)
		}
		return nil
	})
}

// getOrCreateTag expects an already-normalized non-empty name. A lost
// insert race (unique constraint on name) resolves by re-fetching the row
// the winner created.
func getOrCreateTag(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up tag: %w", err)
	}

	res, insErr := q.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
	if insErr != nil {
		if selErr := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id); selErr == nil {
			return id, nil
		}
		return 0, fmt.Errorf("inserting tag: %w", insErr)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading tag id: %w", err)
	}
	return id, nil
}

// replaceBookmarkTags expects already-normalized names: delete all existing
// associations, then get-or-create and link each name.
func replaceBookmarkTags(ctx context.Context, q querier, bookmarkID int64, names []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM bookmark_tags WHERE bookmark_id = ?`, bookmarkID); err != nil {
		return fmt.Errorf("clearing bookmark tags: %w", err)
	}

	for _, name := range names {
		tagID, err := getOrCreateTag(ctx, q, name)
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id) VALUES (?, ?)`,
			bookmarkID, tagID); err != nil {
			return fmt.Errorf("linking tag: %w", err)
		}
	}
	return nil
}

func tagsForBookmark(ctx context.Context, q querier, bookmarkID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.name
		FROM tags t
		JOIN bookmark_tags bt ON t.id = bt.tag_id
		WHERE bt.bookmark_id = ?`, bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("querying bookmark tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tag name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
