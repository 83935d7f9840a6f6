package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/middleware/auth"
	"tracker/internal/session"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// sanitizeText is like sanitizeInput but keeps tabs and line breaks.
func sanitizeText(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if (r < 32 && r != '\t' && r != '\n' && r != '\r') || r == 127 {
			return -1
		}
		return r
	}, s)
}

// pathPartition reads the {category} and {subcat} URL parameters.
func pathPartition(r *http.Request) (core.Partition, error) {
	p := core.NewPartition(core.Category(chi.URLParam(r, "category")), chi.URLParam(r, "subcat"))
	if err := p.Validate(); err != nil {
		return core.Partition{}, err
	}
	return p, nil
}

// pathID reads the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// currentUser returns the caller placed in the context by the auth middleware.
func currentUser(r *http.Request) auth.User {
	user, _ := auth.FromContext(r.Context())
	return user
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoPendingInput), errors.Is(err, session.ErrUnexpectedStep):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text shown to the caller. Internal errors are not exposed.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// writeError writes err as a JSON error and logs unexpected failures.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, nil)
	}
	ErrorResponse(status, errorMessage(err, status)).Write(w)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
