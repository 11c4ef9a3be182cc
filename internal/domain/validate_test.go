package domain

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "https", input: "https://example.com/page", wantErr: false},
		{name: "http", input: "http://example.com", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "relative", input: "/just/a/path", wantErr: true},
		{name: "ftp scheme", input: "ftp://example.com/file", wantErr: true},
		{name: "no host", input: "https://", wantErr: true},
		{name: "not a url", input: "not a url at all", wantErr: true},
		{name: "too long", input: "https://example.com/" + strings.Repeat("a", MaxURLLen), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("ValidateURL(%q) returned non-validation error %v", tt.input, err)
			}
		})
	}
}

func TestValidateBookmarkInput(t *testing.T) {
	valid := BookmarkInput{
		URL:         "https://example.com",
		Title:       "Example",
		Description: "A site",
		Tags:        []string{"web"},
	}

	t.Run("valid input", func(t *testing.T) {
		if err := ValidateBookmarkInput(valid); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("oversized title", func(t *testing.T) {
		in := valid
		in.Title = strings.Repeat("t", MaxTitleLen+1)
		err := ValidateBookmarkInput(in)
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if !strings.Contains(err.Error(), "500") {
			t.Errorf("error should state the limit: %v", err)
		}
	})

	t.Run("oversized description", func(t *testing.T) {
		in := valid
		in.Description = strings.Repeat("d", MaxDescriptionLen+1)
		if err := ValidateBookmarkInput(in); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("oversized tag", func(t *testing.T) {
		in := valid
		in.Tags = []string{strings.Repeat("x", MaxTagLen+1)}
		if err := ValidateBookmarkInput(in); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestCoerceSetting(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  interface{}
		want   string
		wantOK bool
	}{
		{name: "bool true", key: SettingShowURL, value: true, want: "1", wantOK: true},
		{name: "bool false", key: SettingShowDatetime, value: false, want: "0", wantOK: true},
		{name: "bool as string", key: SettingTagsAlphabetical, value: "true", want: "1", wantOK: true},
		{name: "per page valid", key: SettingPaginationPerPage, value: "50", want: "50", wantOK: true},
		{name: "per page unlimited", key: SettingPaginationPerPage, value: "unlimited", want: "unlimited", wantOK: true},
		{name: "per page invalid", key: SettingPaginationPerPage, value: "17", wantOK: false},
		{name: "threshold number", key: SettingTagThreshold, value: float64(3), want: "3", wantOK: true},
		{name: "threshold clamps negative", key: SettingTagThreshold, value: "-4", want: "0", wantOK: true},
		{name: "unknown key", key: "wp_secret", value: "x", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceSetting(tt.key, tt.value)
			if ok != tt.wantOK {
				t.Fatalf("CoerceSetting(%q, %v) ok = %v, want %v", tt.key, tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CoerceSetting(%q, %v) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}
