package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linkhoard/linkhoard/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:     srv.URL + "/",
		User:        "admin",
		AppPassword: "abcd efgh",
	})
}

func TestConfigured(t *testing.T) {
	if New(Config{BaseURL: "https://blog.example"}).Configured() {
		t.Error("missing credentials should not count as configured")
	}
	if !New(Config{BaseURL: "https://blog.example", User: "u", AppPassword: "p"}).Configured() {
		t.Error("full config should count as configured")
	}
}

func TestExists(t *testing.T) {
	const target = "https://a.example/post"

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != target {
			t.Errorf("search = %q, want the bookmark URL", got)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "abcd efgh" {
			t.Error("basic auth not sent")
		}
		io.WriteString(w, `[
			{"content": {"rendered": "<p>Something else</p>"}},
			{"content": {"rendered": "<p><a href=\"https://a.example/post\">Link</a></p>"}}
		]`)
	})

	exists, err := c.Exists(context.Background(), target)
	if err != nil {
		t.Fatalf("probing: %v", err)
	}
	if !exists {
		t.Error("URL present in rendered content should report exists")
	}

	exists, err = c.Exists(context.Background(), "https://other.example/")
	if err != nil {
		t.Fatalf("probing: %v", err)
	}
	if exists {
		t.Error("unmatched URL should not report exists")
	}
}

func TestPublish(t *testing.T) {
	var posted map[string]interface{}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/wp-json/wp/v2/tags"):
			if r.Method == http.MethodGet {
				// Term lookup misses; the client must create it.
				io.WriteString(w, `[]`)
				return
			}
			var term map[string]string
			json.NewDecoder(r.Body).Decode(&term)
			if term["slug"] != "from-linkhoard" {
				t.Errorf("tag slug = %q", term["slug"])
			}
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id": 7}`)
		case r.URL.Path == "/wp-json/wp/v2/posts" && r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&posted)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id": 42}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c.cfg.PostTags = "From Linkhoard!"

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	postID, err := c.Publish(context.Background(), &domain.Bookmark{
		URL:         "https://a.example/post",
		Description: "A note",
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if postID != 42 {
		t.Errorf("post id = %d, want 42", postID)
	}

	if posted["title"] != "https://a.example/post" {
		t.Errorf("title = %v, want URL fallback", posted["title"])
	}
	content, _ := posted["content"].(string)
	if !strings.Contains(content, "<p>A note</p>") || !strings.Contains(content, `<a href="https://a.example/post">Link</a>`) {
		t.Errorf("content = %q", content)
	}
	if posted["status"] != "publish" {
		t.Errorf("status = %v", posted["status"])
	}
	if posted["date"] != created.Format(time.RFC3339) {
		t.Errorf("date = %v, want bookmark creation time", posted["date"])
	}
	tags, _ := posted["tags"].([]interface{})
	if len(tags) != 1 || tags[0] != float64(7) {
		t.Errorf("tags = %v, want the ensured term id", posted["tags"])
	}
}

func TestPublishDropsPlaceholderDescription(t *testing.T) {
	var posted map[string]interface{}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&posted)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 1}`)
	})

	_, err := c.Publish(context.Background(), &domain.Bookmark{
		URL:         "https://a.example/",
		Title:       "Titled",
		Description: "Uncategorized",
	})
	if err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if content, _ := posted["content"].(string); strings.Contains(content, "Uncategorized") {
		t.Errorf("placeholder description should be dropped, content = %q", content)
	}
	if posted["title"] != "Titled" {
		t.Errorf("title = %v", posted["title"])
	}
}

func TestPublishUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"code": "rest_cannot_create"}`)
	})

	_, err := c.Publish(context.Background(), &domain.Bookmark{URL: "https://a.example/"})
	var ese *domain.ExternalServiceError
	if !errors.As(err, &ese) || ese.Status != http.StatusForbidden {
		t.Errorf("expected external service error with upstream status, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	for in, want := range map[string]string{
		"Interesting stuff": "interesting-stuff",
		"C++ Tips!":         "c-tips",
		"  spaced  ":        "spaced",
		"already-good":      "already-good",
	} {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
