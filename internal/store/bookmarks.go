package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// FindByURL returns the bookmark with exactly this URL, or (nil, nil) when
// absent. Matching is literal: callers wanting trailing-slash or scheme
// variants try them explicitly.
func (s *Store) FindByURL(ctx context.Context, url string) (*domain.Bookmark, error) {
	return findBookmarkByURL(ctx, s.db, url)
}

// GetBookmark returns the bookmark by id, or (nil, nil) when absent.
func (s *Store) GetBookmark(ctx context.Context, id int64) (*domain.Bookmark, error) {
	return getBookmark(ctx, s.db, id)
}

// UpsertByURL inserts or updates the bookmark keyed by its exact URL and
// fully replaces its tag set. Returns the resulting bookmark and whether it
// was created. Empty title/description clear the stored values.
func (s *Store) UpsertByURL(ctx context.Context, in domain.BookmarkInput) (*domain.Bookmark, bool, error) {
	if err := domain.ValidateBookmarkInput(in); err != nil {
		return nil, false, err
	}

	var (
		out     *domain.Bookmark
		created bool
	)
	err := s.WithTx(ctx, func(tx *Tx) error {
		existing, err := findBookmarkByURL(ctx, tx.q, in.URL)
		if err != nil {
			return err
		}

		now := tx.timestamp()
		var id int64
		if existing != nil {
			id = existing.ID
			_, err = tx.q.ExecContext(ctx, `
				UPDATE bookmarks
				SET title = ?, description = ?, is_private = ?, updated_at = ?
				WHERE id = ?`,
				nullString(in.Title), nullString(in.Description), boolInt(in.IsPrivate), now, id)
			if err != nil {
				return fmt.Errorf("updating bookmark: %w", err)
			}
		} else {
			id, err = insertBookmark(ctx, tx.q, in, now)
			if err != nil {
				return err
			}
			created = true
		}

		if err := replaceBookmarkTags(ctx, tx.q, id, domain.NormalizeTags(in.Tags)); err != nil {
			return err
		}

		out, err = getBookmark(ctx, tx.q, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// Update rewrites the bookmark identified by id, including its URL, and
// fully replaces its tag set. URL uniqueness is not re-checked here; a
// collision surfaces as a constraint violation from the unique index.
func (s *Store) Update(ctx context.Context, id int64, in domain.BookmarkInput) (*domain.Bookmark, error) {
	if err := domain.ValidateBookmarkInput(in); err != nil {
		return nil, err
	}

	var out *domain.Bookmark
	err := s.WithTx(ctx, func(tx *Tx) error {
		var exists int64
		err := tx.q.QueryRowContext(ctx, `SELECT id FROM bookmarks WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("bookmark")
		}
		if err != nil {
			return fmt.Errorf("looking up bookmark: %w", err)
		}

		_, err = tx.q.ExecContext(ctx, `
			UPDATE bookmarks
			SET url = ?, title = ?, description = ?, is_private = ?, updated_at = ?
			WHERE id = ?`,
			in.URL, nullString(in.Title), nullString(in.Description), boolInt(in.IsPrivate), tx.timestamp(), id)
		if err != nil {
			return fmt.Errorf("updating bookmark: %w", err)
		}

		if err := replaceBookmarkTags(ctx, tx.q, id, domain.NormalizeTags(in.Tags)); err != nil {
			return err
		}

		out, err = getBookmark(ctx, tx.q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a bookmark and its tag associations. The cascade is
// explicit so behavior does not depend on the engine's foreign key handling.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM bookmark_tags WHERE bookmark_id = ?`, id); err != nil {
			return fmt.Errorf("deleting bookmark tags: %w", err)
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting bookmark: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFound("bookmark")
		}
		return nil
	})
}

// DeleteMany removes the given bookmarks, ignoring ids that no longer
// exist, and returns how many rows were deleted.
func (s *Store) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]interface{}, len(ids))
		for i, id := range ids {
			args[i] = id
		}

		if _, err := tx.q.ExecContext(ctx,
			`DELETE FROM bookmark_tags WHERE bookmark_id IN (`+placeholders+`)`, args...); err != nil {
			return fmt.Errorf("deleting bookmark tags: %w", err)
		}
		res, err := tx.q.ExecContext(ctx,
			`DELETE FROM bookmarks WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return fmt.Errorf("deleting bookmarks: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

// List returns the bookmarks matching the filter, newest first (insertion
// order within a timestamp), and the total match count before pagination.
func (s *Store) List(ctx context.Context, f domain.BookmarkFilter) ([]domain.Bookmark, int, error) {
	where, args := buildBookmarkWhere(f)

	query := bookmarkSelect + where + `
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.id ASC`
	queryArgs := args
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		queryArgs = append(append([]interface{}{}, args...), f.PerPage, (page-1)*f.PerPage)
	}

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	items := []domain.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning bookmark: %w", err)
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading bookmarks: %w", err)
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT b.id) FROM bookmarks b`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting bookmarks: %w", err)
	}

	return items, total, nil
}

func buildBookmarkWhere(f domain.BookmarkFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if f.Tag != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM bookmark_tags bt2
			JOIN tags t2 ON bt2.tag_id = t2.id
			WHERE bt2.bookmark_id = b.id AND t2.name = ?
		)`)
		args = append(args, domain.NormalizeTag(f.Tag))
	}

	if f.Search != "" {
		clauses = append(clauses, `(b.title LIKE ? OR b.description LIKE ? OR b.url LIKE ?)`)
		term := "%" + f.Search + "%"
		args = append(args, term, term, term)
	}

	if !f.IncludePrivate {
		clauses = append(clauses, `b.is_private = 0`)
	} else if f.Private != nil {
		clauses = append(clauses, `b.is_private = ?`)
		args = append(args, boolInt(*f.Private))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func findBookmarkByURL(ctx context.Context, q querier, url string) (*domain.Bookmark, error) {
	row := q.QueryRowContext(ctx, bookmarkSelect+` WHERE b.url = ? GROUP BY b.id`, url)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying bookmark by url: %w", err)
	}
	return b, nil
}

func getBookmark(ctx context.Context, q querier, id int64) (*domain.Bookmark, error) {
	row := q.QueryRowContext(ctx, bookmarkSelect+` WHERE b.id = ? GROUP BY b.id`, id)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying bookmark: %w", err)
	}
	return b, nil
}

func insertBookmark(ctx context.Context, q querier, in domain.BookmarkInput, now string) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO bookmarks (url, title, description, is_private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.URL, nullString(in.Title), nullString(in.Description), boolInt(in.IsPrivate), now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting bookmark: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading bookmark id: %w", err)
	}
	return id, nil
}
