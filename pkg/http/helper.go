package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// ExtractPage reads 1-based page/limit parameters. Pages past
// config.MaxPaginationPage are rejected.
func ExtractPage(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > config.MaxPaginationPage {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return page, config.NormalizePaginationLimit(limit), nil
}

// DecodeJSON decodes the request body into dst. An empty body or malformed
// JSON is a client error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
