package handlers

import (
	"net/http"
	"strconv"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
)

type publishResponse struct {
	Published     bool   `json:"published"`
	AlreadyExists bool   `json:"already_exists,omitempty"`
	PostID        int64  `json:"post_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// PublishBookmark pushes one bookmark to the configured WordPress site. A
// URL already present in a published post short-circuits without creating
// a duplicate.
func PublishBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BookmarkID int64 `json:"bookmark_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, err := loadPublishTarget(d, r, req.BookmarkID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		exists, err := d.WordPress.Exists(r.Context(), b.URL)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if exists {
			writeJSON(w, http.StatusOK, publishResponse{
				AlreadyExists: true,
				Message:       "this bookmark URL already exists in WordPress",
			})
			return
		}

		postID, err := d.WordPress.Publish(r.Context(), b)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, publishResponse{Published: true, PostID: postID})
	}
}

// CheckPublished reports whether the bookmark's URL already exists on the
// WordPress site.
func CheckPublished(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.URL.Query().Get("bookmark_id"), 10, 64)

		b, err := loadPublishTarget(d, r, id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		exists, err := d.WordPress.Exists(r.Context(), b.URL)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
	}
}

func loadPublishTarget(d deps.Deps, r *http.Request, id int64) (*domain.Bookmark, error) {
	if d.WordPress == nil || !d.WordPress.Configured() {
		return nil, domain.Validationf("wordpress", "WordPress publishing is not configured")
	}
	if id <= 0 {
		return nil, domain.Validationf("bookmark_id", "a valid bookmark id is required")
	}
	b, err := d.Store.GetBookmark(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("bookmark")
	}
	return b, nil
}
