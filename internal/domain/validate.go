package domain

import "net/url"

// Field length limits enforced before any store mutation.
const (
	MaxURLLen         = 2048
	MaxTitleLen       = 500
	MaxDescriptionLen = 5000
	MaxTagLen         = 100
)

// ValidateURL checks that raw is a well-formed absolute http/https URL no
// longer than MaxURLLen.
func ValidateURL(raw string) error {
	if raw == "" {
		return Validationf("url", "URL is required")
	}
	if len(raw) > MaxURLLen {
		return Validationf("url", "exceeds maximum length of %d characters", MaxURLLen)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Validationf("url", "invalid URL format")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Validationf("url", "invalid URL format")
	}
	return nil
}

// ValidateBookmarkInput validates all fields of a bookmark payload. It must
// be called before any mutation so that validation failures never partially
// apply.
func ValidateBookmarkInput(in BookmarkInput) error {
	if err := ValidateURL(in.URL); err != nil {
		return err
	}
	if len(in.Title) > MaxTitleLen {
		return Validationf("title", "exceeds maximum length of %d characters", MaxTitleLen)
	}
	if len(in.Description) > MaxDescriptionLen {
		return Validationf("description", "exceeds maximum length of %d characters", MaxDescriptionLen)
	}
	for _, tag := range in.Tags {
		if len(tag) > MaxTagLen {
			return Validationf("tag", "exceeds maximum length of %d characters", MaxTagLen)
		}
	}
	return nil
}
