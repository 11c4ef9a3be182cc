// Package importer parses external bookmark exports and applies them to the
// store as one transactional batch with a reversible history record.
package importer

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// Format selects the import parser. It is declared by the caller, never
// sniffed from the content.
type Format string

const (
	// FormatNetscape is the browser bookmark-export markup (NETSCAPE-Bookmark-file-1).
	FormatNetscape Format = "netscape"
	// FormatJSON is a flat JSON array of bookmark objects.
	FormatJSON Format = "json"
)

// ParseFormat maps a caller-supplied format string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "netscape", "html", "":
		return FormatNetscape, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", domain.Validationf("format", "unsupported import format %q", s)
	}
}

// Candidate is one parsed bookmark awaiting apply. Tags are already
// normalized.
type Candidate struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}

// Parse runs the selected parser. additionalTags must be normalized; they
// are merged into every candidate's tag set. Candidates with an invalid or
// empty URL are dropped silently.
func Parse(format Format, content []byte, additionalTags []string) ([]Candidate, error) {
	switch format {
	case FormatJSON:
		return parseFlat(content, additionalTags)
	default:
		return parseNetscape(content, additionalTags), nil
	}
}

// Generic root folder names that carry no information as tags.
var rootFolders = map[string]bool{
	"Bookmarks Bar":  true,
	"Bookmarks":      true,
	"Bookmarks Menu": true,
}

// parseNetscape scans the export with a tokenizer, tracking the folder
// stack via <h3>/<dl> nesting. Folder names become tags (FolderTag form);
// a <dd> following a link becomes its description.
func parseNetscape(content []byte, additionalTags []string) []Candidate {
	z := html.NewTokenizer(bytes.NewReader(content))

	var (
		out           []Candidate
		folders       []string
		pendingFolder string
		curHref       string
		inH3, inA     bool
		inDD          bool
		h3Text        strings.Builder
		aText         strings.Builder
		ddText        strings.Builder
	)

	// A <dd> has no closing tag in most exports; it ends at the next
	// structural tag.
	flushDD := func() {
		if !inDD {
			return
		}
		inDD = false
		if desc := strings.TrimSpace(ddText.String()); desc != "" && len(out) > 0 && out[len(out)-1].Description == "" {
			out[len(out)-1].Description = desc
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			flushDD()
			return out

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "h3":
				flushDD()
				inH3 = true
				h3Text.Reset()
			case "dl":
				flushDD()
				folders = append(folders, pendingFolder)
				pendingFolder = ""
			case "dt":
				flushDD()
			case "a":
				flushDD()
				inA = true
				aText.Reset()
				curHref = ""
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						curHref = attr.Val
					}
				}
			case "dd":
				inDD = true
				ddText.Reset()
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "h3":
				inH3 = false
				pendingFolder = strings.TrimSpace(h3Text.String())
			case "dl":
				flushDD()
				if len(folders) > 0 {
					folders = folders[:len(folders)-1]
				}
			case "a":
				inA = false
				if c := newCandidate(curHref, aText.String(), folders, additionalTags); c != nil {
					out = append(out, *c)
				}
			case "dd":
				flushDD()
			}

		case html.TextToken:
			text := string(z.Text())
			if inH3 {
				h3Text.WriteString(text)
			}
			if inA {
				aText.WriteString(text)
			}
			if inDD {
				ddText.WriteString(text)
			}
		}
	}
}

func newCandidate(href, title string, folders, additionalTags []string) *Candidate {
	if href == "" || domain.ValidateURL(href) != nil {
		return nil
	}

	tags := make([]string, 0, len(folders)+len(additionalTags))
	for _, folder := range folders {
		if folder == "" || rootFolders[folder] {
			continue
		}
		if tag := domain.FolderTag(folder); tag != "" {
			tags = append(tags, tag)
		}
	}
	tags = append(tags, additionalTags...)

	return &Candidate{
		URL:   href,
		Title: strings.TrimSpace(title),
		Tags:  domain.NormalizeTags(tags),
	}
}

// tagList accepts either a JSON array of strings or a single
// comma-separated string, so flat exports from either shape import cleanly.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = domain.ParseTagList(s)
	return nil
}

type flatBookmark struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        tagList `json:"tags"`
}

func parseFlat(content []byte, additionalTags []string) ([]Candidate, error) {
	var items []flatBookmark
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, domain.Validationf("content", "invalid JSON import: %v", err)
	}

	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		if item.URL == "" || domain.ValidateURL(item.URL) != nil {
			continue
		}
		tags := append(domain.NormalizeTags(item.Tags), additionalTags...)
		out = append(out, Candidate{
			URL:         item.URL,
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Tags:        domain.NormalizeTags(tags),
		})
	}
	return out, nil
}
