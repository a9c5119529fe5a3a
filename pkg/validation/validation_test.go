package validation

import (
	"errors"
	"net/http"
	"testing"

	apperrors "marketplace/pkg/errors"
)

type sample struct {
	Email string   `json:"email" validate:"required,email"`
	Price *float64 `json:"price" validate:"required,gt=0"`
	Site  string   `json:"site,omitempty" validate:"omitempty,url"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	v := New()
	zero := 0.0

	err := v.Struct(sample{Email: "x@example.com", Price: &zero, Site: "nope"})
	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %v", err)
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field] = fe.Tag
	}
	if fields["price"] != "gt" || fields["site"] != "url" {
		t.Errorf("unexpected field errors %v", fields)
	}
}

func TestToAppError(t *testing.T) {
	v := New()
	price := 10.0

	tests := []struct {
		name    string
		input   sample
		wantMsg string
	}{
		{"missing field", sample{Price: &price}, MissingRequiredFields},
		{"invalid field", sample{Email: "not-email", Price: &price}, "Invalid listing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ToAppError(v.Struct(tt.input), "Invalid listing")
			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != http.StatusBadRequest || appErr.Message != tt.wantMsg {
				t.Errorf("got %d %q, want 400 %q", appErr.StatusCode(), appErr.Message, tt.wantMsg)
			}
		})
	}

	if ToAppError(v.Struct(sample{Email: "a@b.co", Price: &price}), "x") != nil {
		t.Error("valid input should produce no error")
	}
}
