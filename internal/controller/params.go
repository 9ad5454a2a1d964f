package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
)

// Request bodies larger than this are rejected.
const maxBodyBytes = 1 << 20

var (
	errInvalidID   = appErrors.BadRequest("invalid id")
	errInvalidBody = appErrors.BadRequest("invalid request body")
)

// pathID reads a positive integer URL parameter.
func pathID(r *http.Request, name string) (int, *appErrors.APIError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errInvalidID.With("param", name)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty request body")
	}
	return err
}
