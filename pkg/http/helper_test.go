package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/pkg/config"
)

func TestExtractPage(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "", 1, config.DefaultPaginationPageSize, false},
		{"explicit", "page=3&limit=20", 3, 20, false},
		{"last allowed page", "page=10000", config.MaxPaginationPage, config.DefaultPaginationPageSize, false},
		{"page past bound", "page=10001", 0, 0, true},
		{"page overflowing int", "page=9223372036854775807", 0, 0, true},
		{"negative page", "page=-1", 0, 0, true},
		{"bad limit", "limit=ten", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/search?"+tt.query, nil)
			page, limit, err := ExtractPage(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractPage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("ExtractPage() = (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
