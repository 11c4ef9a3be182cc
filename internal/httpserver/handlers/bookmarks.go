package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

type bookmarkRequest struct {
	ID          int64   `json:"id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	IsPrivate   bool    `json:"is_private"`
	Tags        tagList `json:"tags"`
}

func (br bookmarkRequest) input() domain.BookmarkInput {
	return domain.BookmarkInput{
		URL:         strings.TrimSpace(br.URL),
		Title:       strings.TrimSpace(br.Title),
		Description: strings.TrimSpace(br.Description),
		IsPrivate:   br.IsPrivate,
		Tags:        br.Tags,
	}
}

type pagination struct {
	Page    int         `json:"page"`
	PerPage interface{} `json:"per_page"` // int, or "unlimited"
	Total   int         `json:"total"`
	Pages   int         `json:"pages"`
}

type bookmarkListResponse struct {
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
	Pagination pagination        `json:"pagination"`
}

// ListBookmarks serves the public listing. Anonymous callers see public
// bookmarks only; authenticated callers see everything and may filter on
// visibility. The page size defaults to the stored setting.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()
		authed := mw.SessionFrom(ctx) != nil

		settings, err := d.Store.GetSettings(ctx)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		filter := domain.BookmarkFilter{
			Tag:            q.Get("tag"),
			Search:         q.Get("search"),
			IncludePrivate: authed,
			Page:           intParam(q.Get("page"), 1),
			PerPage:        settings.PerPage(),
		}
		if raw := q.Get("per_page"); raw != "" {
			if raw == domain.PerPageUnlimited {
				filter.PerPage = 0
			} else if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				filter.PerPage = n
			}
		}
		if filter.Page < 1 {
			filter.Page = 1
		}
		if authed {
			if v := q.Get("private"); v != "" {
				private := v == "1" || v == "true"
				filter.Private = &private
			}
		}

		items, total, err := d.Store.List(ctx, filter)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		p := pagination{Page: filter.Page, Total: total, Pages: 1}
		if filter.PerPage > 0 {
			p.PerPage = filter.PerPage
			p.Pages = int(math.Ceil(float64(total) / float64(filter.PerPage)))
			if p.Pages < 1 {
				p.Pages = 1
			}
		} else {
			p.PerPage = domain.PerPageUnlimited
		}

		writeJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: items, Pagination: p})
	}
}

type bookmarkResponse struct {
	Bookmark *domain.Bookmark `json:"bookmark"`
	Created  bool             `json:"created"`
}

// SaveBookmark upserts by URL: the same URL saved twice updates the
// existing row in place. 201 on create, 200 on update.
func SaveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookmarkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		b, created, err := d.Store.UpsertByURL(r.Context(), req.input())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, bookmarkResponse{Bookmark: b, Created: created})
	}
}

// UpdateBookmark is a full replace of the identified row, URL included.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookmarkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if req.ID <= 0 {
			writeError(w, d.Logger, domain.Validationf("id", "a valid bookmark id is required"))
			return
		}

		b, err := d.Store.Update(r.Context(), req.ID, req.input())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: b})
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, d.Logger, domain.Validationf("id", "a valid bookmark id is required"))
			return
		}

		if err := d.Store.Delete(r.Context(), id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "bookmark deleted"})
	}
}

// LookupBookmark resolves a URL to its stored bookmark for the bookmarklet.
// Storage matching is exact, so common variants (trailing slash, http vs
// https) are tried here on the caller's behalf.
func LookupBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("url"))
		if raw == "" {
			writeError(w, d.Logger, domain.Validationf("url", "url is required"))
			return
		}

		for _, candidate := range urlVariants(raw) {
			b, err := d.Store.FindByURL(r.Context(), candidate)
			if err != nil {
				writeError(w, d.Logger, err)
				return
			}
			if b != nil {
				writeJSON(w, http.StatusOK, map[string]*domain.Bookmark{"bookmark": b})
				return
			}
		}
		writeError(w, d.Logger, domain.NotFound("bookmark"))
	}
}

// urlVariants returns the URL plus its trailing-slash and scheme toggles,
// original first.
func urlVariants(raw string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	schemes := []string{raw}
	if strings.HasPrefix(raw, "https://") {
		schemes = append(schemes, "http://"+strings.TrimPrefix(raw, "https://"))
	} else if strings.HasPrefix(raw, "http://") {
		schemes = append(schemes, "https://"+strings.TrimPrefix(raw, "http://"))
	}
	for _, u := range schemes {
		add(u)
		if strings.HasSuffix(u, "/") {
			add(strings.TrimSuffix(u, "/"))
		} else {
			add(u + "/")
		}
	}
	return out
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
