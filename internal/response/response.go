// Package response turns handler results into HTTP responses. Error is the
// one place an error object is rendered for the client.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
)

// Result is what a handler produces: a payload or an error object, never both.
type Result struct {
	Status int
	Body   any

	// Raw bodies are written as-is, e.g. an upstream payload forwarded verbatim.
	Raw         []byte
	ContentType string

	Err *appErrors.APIError
}

func OK(body any) Result {
	return Result{Status: http.StatusOK, Body: body}
}

func Created(body any) Result {
	return Result{Status: http.StatusCreated, Body: body}
}

func Raw(status int, contentType string, body []byte) Result {
	return Result{Status: status, Raw: body, ContentType: contentType}
}

func Fail(err *appErrors.APIError) Result {
	return Result{Err: err}
}

// HandlerFunc is a handler expressed as request -> Result.
type HandlerFunc func(r *http.Request) Result

// Handle runs fn and writes its Result.
func Handle(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, fn HandlerFunc) {
	res := fn(r)
	if res.Err != nil {
		Error(w, r, logger, res.Err)
		return
	}

	if res.Raw != nil {
		ct := res.ContentType
		if ct == "" {
			ct = "application/json"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(res.Status)
		if _, err := w.Write(res.Raw); err != nil {
			logger.Error().Err(err).Msg("failed to write response")
		}
		return
	}

	JSON(w, logger, res.Status, res.Body)
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// Error renders an error object using apiCode as the HTTP status.
func Error(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, apiErr *appErrors.APIError) {
	status := apiErr.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	ev := logger.Warn()
	if status >= 500 {
		ev = logger.Error()
	}
	ev.Err(apiErr.Err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("api_code", apiErr.Code).
		Str("api_message", apiErr.Message).
		Msg("request failed")

	JSON(w, logger, status, apiErr)
}
