// Package utils provides utility functions and helpers for the application.
// This file implements the standardized API response envelope used by every
// endpoint:
//
//	{"status": bool, "data": ..., "message": ..., "error": ...}
//
// Absent fields are omitted rather than emitted null, keeping the wire shape
// identical for every client.
package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/constants"
)

// Response represents the standardized API response envelope.
type Response struct {
	Status  bool        `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginationParams contains parameters for pagination extracted from requests.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the requested page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// JSON sends a success envelope with the given status code and data.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, Response{
		Status: statusCode >= 200 && statusCode < 300,
		Data:   data,
	})
}

// Message sends a success envelope carrying only a human-readable message.
func Message(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, Response{
		Status:  true,
		Message: message,
	})
}

// Error sends a failure envelope with the given status code and error string.
func Error(w http.ResponseWriter, statusCode int, errMsg string) {
	SendJSON(w, statusCode, Response{
		Status: false,
		Error:  errMsg,
	})
}

// ErrorFromAppError sends a failure envelope derived from an AppError.
// The client sees only the user-facing message; DevInfo stays in the logs.
func ErrorFromAppError(w http.ResponseWriter, appErr *AppError) {
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error().
			Err(appErr.Err).
			Str("dev_info", appErr.DevInfo).
			Msg("Internal error returned to client")
	}
	Error(w, appErr.StatusCode, appErr.Message)
}

// Unauthorized sends a 401 failure envelope.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 failure envelope.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404 failure envelope.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// BadRequest sends a 400 failure envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// InternalServerError logs the error and sends a generic 500 envelope.
// Internals never reach the client.
func InternalServerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Internal server error")
	Error(w, http.StatusInternalServerError, "An internal server error occurred")
}

// SendJSON writes the response with appropriate headers. An encoding failure
// at this point cannot be reported to the client, only logged.
func SendJSON(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// GetPaginationParams extracts and clamps pagination parameters from the
// request query string.
func GetPaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{
		Page:     constants.DefaultPage,
		PageSize: constants.DefaultPageSize,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			params.Page = page
		}
	}

	if sizeStr := r.URL.Query().Get("limit"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			if size > constants.MaxPageSize {
				size = constants.MaxPageSize
			}
			params.PageSize = size
		}
	}

	return params
}
