// Package http exposes the tracker as a JSON API for the chat gateway.
//
// This file implements a small builder for JSON responses. Mutations list
// the partitions the gateway should re-render in the X-Refresh header.

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"tracker/internal/core"
)

// RefreshHeader lists the partitions changed by a request as category/subcat pairs.
const RefreshHeader = "X-Refresh"

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
	refresh    []core.Partition
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Refresh marks partitions as changed. Duplicates are dropped.
func (b *ResponseBuilder) Refresh(partitions ...core.Partition) *ResponseBuilder {
	for _, p := range partitions {
		dup := false
		for _, seen := range b.refresh {
			if seen == p {
				dup = true
				break
			}
		}
		if !dup {
			b.refresh = append(b.refresh, p)
		}
	}
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.refresh) > 0 {
		parts := make([]string, len(b.refresh))
		for i, p := range b.refresh {
			parts[i] = p.String()
		}
		w.Header().Set(RefreshHeader, strings.Join(parts, ","))
	}

	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

type errorBody struct {
	Error   string       `json:"error"`
	Session *sessionJSON `json:"session,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func ForbiddenError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusForbidden, message)
}

func ConflictError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
