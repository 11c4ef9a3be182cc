// Package wordpress publishes bookmarks to a WordPress site through its
// REST API, authenticated with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linkhoard/linkhoard/internal/domain"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "linkhoard-wp-sync/1.0"
)

// Config holds the target site and credentials. PostTags and PostCategories
// are comma-separated term names attached to every published post.
type Config struct {
	BaseURL        string
	User           string
	AppPassword    string
	PostTags       string
	PostCategories string
}

// Client is a WordPress REST client. Calls are never retried; publishing is
// a user-triggered action and duplicates are worse than a visible error.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether the site and credentials are all set.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.User != "" && c.cfg.AppPassword != ""
}

// Exists probes whether bookmarkURL already appears in a published post. It
// searches for the URL and scans each match's rendered content; search
// failures degrade to "not found" so a flaky probe never blocks publishing.
func (c *Client) Exists(ctx context.Context, bookmarkURL string) (bool, error) {
	endpoint := c.cfg.BaseURL + "/wp-json/wp/v2/posts?search=" + url.QueryEscape(bookmarkURL) + "&per_page=100"

	var posts []struct {
		Content struct {
			Rendered string `json:"rendered"`
		} `json:"content"`
	}
	status, err := c.get(ctx, endpoint, &posts)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, nil
	}
	for _, p := range posts {
		if strings.Contains(p.Content.Rendered, bookmarkURL) {
			return true, nil
		}
	}
	return false, nil
}

// Publish creates a published post for the bookmark and returns the new
// post id. The post title falls back to the URL, the body is the
// description (when present) followed by the link, and the post date is the
// bookmark's creation time.
func (c *Client) Publish(ctx context.Context, b *domain.Bookmark) (int64, error) {
	title := b.Title
	if title == "" {
		title = b.URL
	}
	desc := strings.TrimSpace(b.Description)
	if strings.EqualFold(desc, "uncategorized") {
		desc = ""
	}

	var parts []string
	if desc != "" {
		parts = append(parts, "<p>"+html.EscapeString(desc)+"</p>")
	}
	parts = append(parts, `<p><a href="`+html.EscapeString(b.URL)+`">Link</a></p>`)

	payload := map[string]interface{}{
		"title":   title,
		"content": strings.Join(parts, "\n"),
		"status":  "publish",
	}
	if !b.CreatedAt.IsZero() {
		payload["date"] = b.CreatedAt.Format(time.RFC3339)
	}
	if ids := c.ensureTerms(ctx, "tags", c.cfg.PostTags); len(ids) > 0 {
		payload["tags"] = ids
	}
	if ids := c.ensureTerms(ctx, "categories", c.cfg.PostCategories); len(ids) > 0 {
		payload["categories"] = ids
	}

	var post struct {
		ID int64 `json:"id"`
	}
	status, err := c.post(ctx, c.cfg.BaseURL+"/wp-json/wp/v2/posts", payload, &post)
	if err != nil {
		return 0, err
	}
	if status >= http.StatusBadRequest {
		return 0, &domain.ExternalServiceError{Status: status, Message: "failed to publish post"}
	}
	if post.ID == 0 {
		return 0, &domain.ExternalServiceError{Status: status, Message: "unexpected response from WordPress"}
	}
	return post.ID, nil
}

// ensureTerms resolves the comma-separated term names to ids under
// /wp-json/wp/v2/<kind>, creating missing terms. A term that cannot be
// resolved is skipped rather than failing the publish.
func (c *Client) ensureTerms(ctx context.Context, kind, names string) []int64 {
	var ids []int64
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if id := c.ensureTerm(ctx, kind, name); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Client) ensureTerm(ctx context.Context, kind, name string) int64 {
	slug := Slugify(name)
	endpoint := c.cfg.BaseURL + "/wp-json/wp/v2/" + kind + "?slug=" + url.QueryEscape(slug)

	var found []struct {
		ID int64 `json:"id"`
	}
	if status, err := c.get(ctx, endpoint, &found); err == nil && status == http.StatusOK && len(found) > 0 {
		return found[0].ID
	}

	var created struct {
		ID int64 `json:"id"`
	}
	status, err := c.post(ctx, c.cfg.BaseURL+"/wp-json/wp/v2/"+kind,
		map[string]string{"name": name, "slug": slug}, &created)
	if err != nil || status != http.StatusCreated {
		return 0
	}
	return created.ID
}

// Slugify converts a term name into a WordPress slug: lower-cased, runs of
// non-alphanumerics collapsed to a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) (int, error) {
	req.SetBasicAuth(c.cfg.User, c.cfg.AppPassword)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &domain.ExternalServiceError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &domain.ExternalServiceError{Status: resp.StatusCode, Message: "reading response"}
	}
	if resp.StatusCode < http.StatusBadRequest && out != nil {
		// Ignore decode errors on success paths; callers check for the
		// fields they need.
		_ = json.Unmarshal(body, out)
	}
	return resp.StatusCode, nil
}
