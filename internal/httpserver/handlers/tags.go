package handlers

import (
	"net/http"
	"strings"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

// ListTags serves the tag cloud. Counts reflect the caller's visibility;
// the stored threshold hides rare tags unless `all=1` (management view) or
// `q=` (autocomplete) is given.
func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		settings, err := d.Store.GetSettings(ctx)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		all := q.Get("all") == "1" || q.Get("all") == "true"
		opts := domain.TagListOptions{
			IncludePrivate: mw.SessionFrom(ctx) != nil,
			Query:          strings.TrimSpace(q.Get("q")),
			All:            all,
			Threshold:      settings.Threshold(),
		}

		tags, err := d.Store.ListTagsWithCounts(ctx, opts)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]domain.TagCount{"tags": tags})
	}
}

// DeleteTag removes a tag everywhere it is used.
func DeleteTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, d.Logger, domain.Validationf("name", "tag name is required"))
			return
		}

		if err := d.Store.DeleteTag(r.Context(), name); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "tag deleted"})
	}
}
