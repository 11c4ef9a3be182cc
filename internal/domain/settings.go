package domain

import "strconv"

// Setting keys. Boolean settings are stored as "0"/"1"; pagination_per_page
// and tag_threshold are stored as strings and returned as strings.
const (
	SettingTagsAlphabetical  = "tags_alphabetical"
	SettingShowURL           = "show_url"
	SettingShowDatetime      = "show_datetime"
	SettingPaginationPerPage = "pagination_per_page"
	SettingTagThreshold      = "tag_threshold"
)

// PerPageUnlimited is the sentinel value of pagination_per_page disabling
// pagination.
const PerPageUnlimited = "unlimited"

var validPerPageValues = map[string]bool{
	"1": true, "5": true, "10": true, "20": true, "50": true,
	"100": true, "250": true, "500": true, "1000": true,
	PerPageUnlimited: true,
}

// Settings is the typed view of the settings table, with defaults applied
// for absent rows.
type Settings struct {
	TagsAlphabetical  bool   `json:"tags_alphabetical"`
	ShowURL           bool   `json:"show_url"`
	ShowDatetime      bool   `json:"show_datetime"`
	PaginationPerPage string `json:"pagination_per_page"`
	TagThreshold      string `json:"tag_threshold"`
}

// DefaultSettings returns the values used when a key has never been written.
func DefaultSettings() Settings {
	return Settings{
		ShowURL:           true,
		PaginationPerPage: "20",
		TagThreshold:      "2",
	}
}

// PerPage returns the page size as an int, or 0 for unlimited.
func (s Settings) PerPage() int {
	if s.PaginationPerPage == PerPageUnlimited {
		return 0
	}
	n, err := strconv.Atoi(s.PaginationPerPage)
	if err != nil || n < 1 {
		return 20
	}
	return n
}

// Threshold returns the tag threshold as a non-negative int.
func (s Settings) Threshold() int {
	n, err := strconv.Atoi(s.TagThreshold)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CoerceSetting converts a loosely typed incoming value for key into its
// stored string form. Unknown keys and out-of-range values are rejected with
// ok=false and silently skipped by callers rather than erroring.
func CoerceSetting(key string, value interface{}) (string, bool) {
	switch key {
	case SettingPaginationPerPage:
		s, isStr := value.(string)
		if !isStr || !validPerPageValues[s] {
			return "", false
		}
		return s, true
	case SettingTagThreshold:
		switch v := value.(type) {
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return "", false
			}
			if n < 0 {
				n = 0
			}
			return strconv.Itoa(n), true
		case float64:
			n := int(v)
			if n < 0 {
				n = 0
			}
			return strconv.Itoa(n), true
		default:
			return "", false
		}
	case SettingTagsAlphabetical, SettingShowURL, SettingShowDatetime:
		switch v := value.(type) {
		case bool:
			if v {
				return "1", true
			}
			return "0", true
		case string:
			if v == "1" || v == "true" {
				return "1", true
			}
			return "0", true
		default:
			return "", false
		}
	default:
		return "", false
	}
}
