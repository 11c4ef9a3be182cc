package domain

import "strings"

// NormalizeTag canonicalizes a manually entered tag name: trimmed and
// lower-cased. Punctuation is preserved on this path; folder-derived tags go
// through FolderTag instead.
func NormalizeTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseTagList splits a comma-separated tag string into normalized unique
// names, dropping entries that are empty after trimming.
func ParseTagList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags normalizes a batch of tag names and deduplicates them,
// keeping first-occurrence order.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		name := NormalizeTag(r)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// FolderTag converts a bookmark-export folder name into a tag: runs of
// non-alphanumeric characters collapse to a single underscore, leading and
// trailing underscores are trimmed, and the result is lower-cased. Returns
// "" when nothing survives.
func FolderTag(folder string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folder) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
