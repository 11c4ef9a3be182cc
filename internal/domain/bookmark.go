package domain

import "time"

// Bookmark is a stored link. Title and Description are optional; empty
// values are persisted as NULL and omitted from JSON output.
type Bookmark struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookmarkInput is the validated payload for creating or updating a bookmark.
// Tags are expected to be already flattened into a slice at the boundary;
// normalization happens in the store.
type BookmarkInput struct {
	URL         string
	Title       string
	Description string
	IsPrivate   bool
	Tags        []string
}

// BookmarkFilter is a conjunction of list filters. Private is only honored
// when IncludePrivate is set (privileged caller); unprivileged callers always
// see public rows only.
type BookmarkFilter struct {
	Tag            string
	Search         string
	Private        *bool
	IncludePrivate bool
	Page           int
	PerPage        int // <= 0 means unlimited
}

// TagCount is one row of the tag listing: a tag name and the number of
// visible bookmarks carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagListOptions controls the tag listing query.
type TagListOptions struct {
	IncludePrivate bool
	Threshold      int    // minimum visible-bookmark count; ignored in All and Query modes
	Query          string // substring autocomplete; limits output to 10 rows
	All            bool   // management view: bypass the threshold
}

// ImportRecord describes one bulk import, persisted atomically with it.
// BookmarkIDs is the ordered list of affected bookmark ids and is what undo
// deletes.
type ImportRecord struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename,omitempty"`
	BookmarkIDs    []int64   `json:"bookmark_ids"`
	CreatedCount   int       `json:"created_count"`
	UpdatedCount   int       `json:"updated_count"`
	AdditionalTags string    `json:"additional_tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
