package http

import (
	"encoding/json"
	"net/http"

	apperrors "marketplace/pkg/errors"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type Page struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err with the status of its AppError. Errors that are
// not AppErrors are reported as a generic 500 without leaking the cause.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal && message == "" {
		message = "Internal server error"
	}
	return WriteJSON(w, appErr.StatusCode(), Response{
		Success: false,
		Message: message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func WritePaginated(w http.ResponseWriter, message string, items any, totalCount int64, limit int, offset int64) error {
	return WriteSuccess(w, message, Page{
		Items:      items,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}
