package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/iamNilotpal/epubpress/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.log.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "code", errors.CodeOf(err))
	}

	respondJSON(w, status, errorBody{Error: errorDetail{
		Code:       errors.CodeOf(err),
		Message:    errors.MessageOf(err),
		Suggestion: errors.SuggestionOf(err),
	}})
}

// statusOf maps an error to the HTTP status reported for it.
func statusOf(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.CodeTaskExists:
		return http.StatusConflict
	case errors.CodeRateLimited:
		return http.StatusTooManyRequests
	}

	switch errors.CategoryOf(err) {
	case errors.CategoryValidation, errors.CategoryCorruptArchive:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryExpired:
		return http.StatusGone
	case errors.CategoryStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
