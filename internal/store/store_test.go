package store

import (
	"context"
	"testing"
	"time"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// newTestStore opens an in-memory database with a deterministic clock that
// advances one second per call, so created_at ordering follows insertion
// order in tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.SetClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	})
	return s
}

func mustUpsert(t *testing.T, s *Store, in domain.BookmarkInput) *domain.Bookmark {
	t.Helper()
	b, _, err := s.UpsertByURL(context.Background(), in)
	if err != nil {
		t.Fatalf("upserting %s: %v", in.URL, err)
	}
	return b
}
