package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linkhoard/linkhoard/internal/config"
	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
	"github.com/linkhoard/linkhoard/internal/importer"
	"github.com/linkhoard/linkhoard/internal/logger"
	"github.com/linkhoard/linkhoard/internal/session"
	"github.com/linkhoard/linkhoard/internal/store"
	"github.com/linkhoard/linkhoard/internal/wordpress"
)

const testPassword = "correct horse"

func newTestServer(t *testing.T) (*httptest.Server, deps.Deps) {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test adjust the dependency set before the router
// is built, e.g. to swap in a configured WordPress client.
func newTestServerWith(t *testing.T, adjust func(*deps.Deps)) (*httptest.Server, deps.Deps) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	st.SetClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	})

	d := deps.Deps{
		Logger:            logger.Nop(),
		StartTime:         time.Now(),
		TimeNow:           time.Now,
		Store:             st,
		Sessions:          session.NewMemory(),
		Importer:          importer.New(st, logger.Nop()),
		WordPress:         wordpress.New(wordpress.Config{}),
		AdminPassword:     testPassword,
		SessionTTL:        time.Hour,
		LoginRateBurst:    50,
		LoginRateInterval: time.Second,
	}
	if adjust != nil {
		adjust(&d)
	}

	srv := New(&config.Config{ListenPort: ":0"}, logger.Nop(), d)
	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)
	return ts, d
}

type client struct {
	t     *testing.T
	base  string
	token string
	csrf  string
}

func (c *client) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.csrf != "" {
		req.Header.Set(mw.CSRFHeader, c.csrf)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("reading response: %v", err)
	}
	return resp, raw
}

func anonClient(t *testing.T, ts *httptest.Server) *client {
	return &client{t: t, base: ts.URL}
}

func adminClient(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	c := &client{t: t, base: ts.URL}

	resp, raw := c.do(http.MethodPost, "/api/auth/login", map[string]string{"password": testPassword})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Token     string `json:"token"`
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	c.token = out.Token
	c.csrf = out.CSRFToken
	return c
}

func seed(t *testing.T, st *store.Store, in domain.BookmarkInput) *domain.Bookmark {
	t.Helper()
	b, _, err := st.UpsertByURL(context.Background(), in)
	if err != nil {
		t.Fatalf("seeding %s: %v", in.URL, err)
	}
	return b
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, raw := anonClient(t, ts).do(http.MethodGet, "/api/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Status != "ok" {
		t.Errorf("body = %s", raw)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := anonClient(t, ts).do(http.MethodPost, "/api/auth/login", map[string]string{"password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSessionInfo(t *testing.T) {
	ts, _ := newTestServer(t)

	_, raw := anonClient(t, ts).do(http.MethodGet, "/api/auth/session", nil)
	var anon struct {
		Authenticated bool `json:"authenticated"`
	}
	json.Unmarshal(raw, &anon)
	if anon.Authenticated {
		t.Error("anonymous session should not be authenticated")
	}

	admin := adminClient(t, ts)
	_, raw = admin.do(http.MethodGet, "/api/auth/session", nil)
	var authed struct {
		Authenticated bool   `json:"authenticated"`
		CSRFToken     string `json:"csrf_token"`
	}
	json.Unmarshal(raw, &authed)
	if !authed.Authenticated || authed.CSRFToken != admin.csrf {
		t.Errorf("authenticated session info wrong: %s", raw)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := adminClient(t, ts)

	resp, _ := admin.do(http.MethodPost, "/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp, _ = admin.do(http.MethodGet, "/api/bookmarks/lookup?url=https%3A%2F%2Fa.example", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("stale token should be rejected, got %d", resp.StatusCode)
	}
}

func TestListBookmarksVisibility(t *testing.T) {
	ts, d := newTestServer(t)
	seed(t, d.Store, domain.BookmarkInput{URL: "https://public.example"})
	seed(t, d.Store, domain.BookmarkInput{URL: "https://secret.example", IsPrivate: true})

	var out struct {
		Bookmarks  []domain.Bookmark `json:"bookmarks"`
		Pagination struct {
			Total   int         `json:"total"`
			PerPage interface{} `json:"per_page"`
		} `json:"pagination"`
	}

	_, raw := anonClient(t, ts).do(http.MethodGet, "/api/bookmarks", nil)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if out.Pagination.Total != 1 || len(out.Bookmarks) != 1 || out.Bookmarks[0].IsPrivate {
		t.Errorf("anonymous listing should hide private rows: %s", raw)
	}
	if out.Pagination.PerPage != float64(20) {
		t.Errorf("per_page = %v, want default 20", out.Pagination.PerPage)
	}

	_, raw = adminClient(t, ts).do(http.MethodGet, "/api/bookmarks", nil)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if out.Pagination.Total != 2 {
		t.Errorf("authenticated total = %d, want 2", out.Pagination.Total)
	}
}

func TestSaveBookmarkAuthAndCSRF(t *testing.T) {
	ts, _ := newTestServer(t)
	body := map[string]interface{}{"url": "https://a.example", "tags": "go, web"}

	resp, _ := anonClient(t, ts).do(http.MethodPost, "/api/bookmarks", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous save status = %d, want 401", resp.StatusCode)
	}

	admin := adminClient(t, ts)
	noCSRF := &client{t: t, base: ts.URL, token: admin.token}
	resp, raw := noCSRF.do(http.MethodPost, "/api/bookmarks", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing CSRF status = %d, want 403: %s", resp.StatusCode, raw)
	}

	resp, raw = admin.do(http.MethodPost, "/api/bookmarks", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Bookmark domain.Bookmark `json:"bookmark"`
		Created  bool            `json:"created"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !out.Created || len(out.Bookmark.Tags) != 2 {
		t.Errorf("create response wrong: %s", raw)
	}

	// Same URL again: update in place, 200.
	resp, raw = admin.do(http.MethodPost, "/api/bookmarks", body)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("re-save status = %d, want 200: %s", resp.StatusCode, raw)
	}
}

func TestUpdateAndDeleteBookmark(t *testing.T) {
	ts, d := newTestServer(t)
	b := seed(t, d.Store, domain.BookmarkInput{URL: "https://old.example", Title: "Old"})
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPut, "/api/bookmarks", map[string]interface{}{
		"id": b.ID, "url": "https://new.example", "title": "New", "is_private": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d: %s", resp.StatusCode, raw)
	}

	resp, _ = admin.do(http.MethodDelete, fmt.Sprintf("/api/bookmarks?id=%d", b.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = admin.do(http.MethodDelete, fmt.Sprintf("/api/bookmarks?id=%d", b.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("re-delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSaveBookmarkValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPost, "/api/bookmarks", map[string]string{"url": "ftp://nope.example"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid scheme status = %d, want 400: %s", resp.StatusCode, raw)
	}
}

func TestLookupTriesURLVariants(t *testing.T) {
	ts, d := newTestServer(t)
	seed(t, d.Store, domain.BookmarkInput{URL: "https://a.example/page"})
	admin := adminClient(t, ts)

	for _, variant := range []string{
		"https%3A%2F%2Fa.example%2Fpage",
		"https%3A%2F%2Fa.example%2Fpage%2F", // trailing slash
		"http%3A%2F%2Fa.example%2Fpage",     // scheme toggle
	} {
		resp, raw := admin.do(http.MethodGet, "/api/bookmarks/lookup?url="+variant, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("lookup %s status = %d: %s", variant, resp.StatusCode, raw)
		}
	}

	resp, _ := admin.do(http.MethodGet, "/api/bookmarks/lookup?url=https%3A%2F%2Fmissing.example", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing lookup status = %d, want 404", resp.StatusCode)
	}
}

func TestTagsEndpoint(t *testing.T) {
	ts, d := newTestServer(t)
	seed(t, d.Store, domain.BookmarkInput{URL: "https://a.example", Tags: []string{"common"}})
	seed(t, d.Store, domain.BookmarkInput{URL: "https://b.example", Tags: []string{"common", "rare"}})

	var out struct {
		Tags []domain.TagCount `json:"tags"`
	}

	// Default threshold (2) hides single-use tags.
	_, raw := anonClient(t, ts).do(http.MethodGet, "/api/tags", nil)
	json.Unmarshal(raw, &out)
	if len(out.Tags) != 1 || out.Tags[0].Name != "common" {
		t.Errorf("thresholded tags = %s", raw)
	}

	_, raw = anonClient(t, ts).do(http.MethodGet, "/api/tags?all=1", nil)
	json.Unmarshal(raw, &out)
	if len(out.Tags) != 2 {
		t.Errorf("all=1 tags = %s", raw)
	}

	admin := adminClient(t, ts)
	resp, _ := admin.do(http.MethodDelete, "/api/tags?name=rare", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tag delete status = %d", resp.StatusCode)
	}
	resp, _ = admin.do(http.MethodDelete, "/api/tags?name=rare", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleting a missing tag status = %d, want 404", resp.StatusCode)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPut, "/api/settings", map[string]interface{}{
		"settings": map[string]interface{}{
			"pagination_per_page": "unlimited",
			"show_datetime":       true,
			"bogus_key":           "ignored",
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settings update status = %d: %s", resp.StatusCode, raw)
	}

	_, raw = anonClient(t, ts).do(http.MethodGet, "/api/settings", nil)
	var out struct {
		Settings domain.Settings `json:"settings"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if out.Settings.PaginationPerPage != "unlimited" || !out.Settings.ShowDatetime {
		t.Errorf("settings = %+v", out.Settings)
	}
}

func TestImportAndUndoEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPost, "/api/imports", map[string]interface{}{
		"format":   "json",
		"filename": "export.json",
		"content":  `[{"url": "https://a.example/"}, {"url": "https://b.example/"}]`,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d: %s", resp.StatusCode, raw)
	}
	var res struct {
		Created  int   `json:"created"`
		ImportID int64 `json:"import_id"`
	}
	if err := json.Unmarshal(raw, &res); err != nil || res.Created != 2 {
		t.Fatalf("import result = %s", raw)
	}

	_, raw = admin.do(http.MethodGet, "/api/imports", nil)
	var history struct {
		Imports []domain.ImportRecord `json:"imports"`
	}
	if err := json.Unmarshal(raw, &history); err != nil || len(history.Imports) != 1 {
		t.Fatalf("history = %s", raw)
	}

	resp, raw = admin.do(http.MethodDelete, "/api/imports", map[string]int64{"import_id": res.ImportID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("undo status = %d: %s", resp.StatusCode, raw)
	}
	var undo struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(raw, &undo); err != nil || undo.Deleted != 2 {
		t.Errorf("undo result = %s", raw)
	}
}

func TestPublishRequiresConfiguration(t *testing.T) {
	ts, d := newTestServer(t)
	b := seed(t, d.Store, domain.BookmarkInput{URL: "https://a.example"})
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPost, "/api/publish", map[string]int64{"bookmark_id": b.ID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unconfigured publish status = %d, want 400: %s", resp.StatusCode, raw)
	}
}

func TestPublishUnknownBookmarkNotFound(t *testing.T) {
	// Configured credentials so the request reaches the bookmark lookup; no
	// WordPress call happens for an id that does not exist.
	ts, _ := newTestServerWith(t, func(d *deps.Deps) {
		d.WordPress = wordpress.New(wordpress.Config{
			BaseURL:     "https://wp.example",
			User:        "admin",
			AppPassword: "secret",
		})
	})
	admin := adminClient(t, ts)

	resp, raw := admin.do(http.MethodPost, "/api/publish", map[string]int64{"bookmark_id": 999})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("publish of unknown id status = %d, want 404: %s", resp.StatusCode, raw)
	}

	resp, raw = admin.do(http.MethodGet, "/api/publish?bookmark_id=999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("publish check of unknown id status = %d, want 404: %s", resp.StatusCode, raw)
	}
}
