package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"basic trim", "  hello  ", "hello"},
		{"multiple spaces", "hello    world", "hello world"},
		{"tabs and newlines", "hello\t\nworld", "hello world"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"unicode preserved", " Café & Spa™ ", "Café & Spa™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	if NormalizeKey("  New   York ") != NormalizeKey("new york") {
		t.Error("keys should match regardless of case and spacing")
	}
	if got := NormalizeKey(NormalizeKey("Lisbon Old Town")); got != "lisbon old town" {
		t.Errorf("NormalizeKey not idempotent: %q", got)
	}
}

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"lowercase and dedupe", []string{"WiFi", "wifi", " Pool "}, []string{"wifi", "pool"}},
		{"drop empty", []string{"", "  ", "parking"}, []string{"parking"}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAmenities(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase host", "https://CDN.Example.com/Img/A.png", "https://cdn.example.com/Img/A.png"},
		{"trailing slash", "https://example.com/logo/", "https://example.com/logo"},
		{"strip tracking", "https://example.com/a?utm_source=x&size=2", "https://example.com/a?size=2"},
		{"not a url passes through", "  not a url ", "not a url"},
		{"other scheme untouched", "ftp://Example.com/x", "ftp://Example.com/x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid E.164 format", "+972541234567", "+972541234567"},
		{"with spaces", "+972 54 123 4567", "+972541234567"},
		{"with dashes", "+972-54-123-4567", "+972541234567"},
		{"with parentheses", "+1 (650) 253-0000", "+16502530000"},
		{"national US number", "650-253-0000", "+16502530000"},
		{"letters", "call-me-maybe", ""},
		{"too short", "+1", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeContactInfo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"phone", " +1 (650) 253-0000 ", "+16502530000"},
		{"email", " Sales@Example.COM ", "sales@example.com"},
		{"free text", "  Ask for   Maria ", "Ask for Maria"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeContactInfo(tt.input); got != tt.want {
				t.Errorf("NormalizeContactInfo(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
