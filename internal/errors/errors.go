// internal/errors/errors.go
package appErrors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrCampaignNotFound is returned when a campaign lookup finds no row.
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// APIError is the uniform error object handed to the presenter. It renders
// as {"apiCode": ..., "apiMessage": ..., <Fields>...}. Err is the cause and is
// only ever logged.
type APIError struct {
	Code    int
	Message string
	Fields  map[string]any
	Err     error
}

func New(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func BadRequest(message string) *APIError {
	return New(http.StatusBadRequest, message)
}

func NotFound(message string) *APIError {
	return New(http.StatusNotFound, message)
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, message)
}

func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, message)
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying err as its cause.
func (e *APIError) Wrap(err error) *APIError {
	cp := *e
	cp.Err = err
	return &cp
}

// With returns a copy of e with an extra field in the rendered body.
// apiCode and apiMessage cannot be overridden.
func (e *APIError) With(key string, value any) *APIError {
	cp := *e
	cp.Fields = make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		cp.Fields[k] = v
	}
	cp.Fields[key] = value
	return &cp
}

func (e *APIError) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		body[k] = v
	}
	body["apiCode"] = e.Code
	body["apiMessage"] = e.Message
	return json.Marshal(body)
}
