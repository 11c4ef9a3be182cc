package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// Transaction-scoped operations composed by the import engine. They mirror
// the Store methods but run on the enclosing transaction so a mid-batch
// failure rolls everything back.

// FindBookmarkByURL looks up a bookmark by exact URL, (nil, nil) if absent.
func (t *Tx) FindBookmarkByURL(ctx context.Context, url string) (*domain.Bookmark, error) {
	return findBookmarkByURL(ctx, t.q, url)
}

// InsertBookmark inserts a new row with matching created/updated timestamps
// and returns its id.
func (t *Tx) InsertBookmark(ctx context.Context, in domain.BookmarkInput) (int64, error) {
	return insertBookmark(ctx, t.q, in, t.timestamp())
}

// SparseUpdateBookmark overwrites title and description only when the new
// values are non-empty; updated_at is refreshed regardless.
func (t *Tx) SparseUpdateBookmark(ctx context.Context, id int64, title, description string) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{t.timestamp()}
	if title != "" {
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if description != "" {
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	args = append(args, id)

	_, err := t.q.ExecContext(ctx,
		`UPDATE bookmarks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating bookmark: %w", err)
	}
	return nil
}

// TagsForBookmark returns the bookmark's current tag names.
func (t *Tx) TagsForBookmark(ctx context.Context, id int64) ([]string, error) {
	return tagsForBookmark(ctx, t.q, id)
}

// ReplaceBookmarkTags replaces the bookmark's tag set with the given
// already-normalized names.
func (t *Tx) ReplaceBookmarkTags(ctx context.Context, id int64, names []string) error {
	return replaceBookmarkTags(ctx, t.q, id, names)
}
