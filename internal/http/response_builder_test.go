package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tracker/internal/core"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/7").
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("Location") != "/api/entries/7" {
		t.Errorf("Location header not set")
	}

	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["id"] != 7 {
		t.Errorf("body = %v", body)
	}
}

func TestResponseBuilder_Refresh(t *testing.T) {
	w := httptest.NewRecorder()

	projects := core.NewPartition(core.Projects, "")
	week := core.NewPartition(core.Plans, "week")
	NewResponse().
		Refresh(projects, week).
		Refresh(projects).
		Write(w)

	if got := w.Header().Get(RefreshHeader); got != "projects/none,plans/week" {
		t.Errorf("%s = %q, want projects/none,plans/week", RefreshHeader, got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"not found", NotFoundError("bad"), http.StatusNotFound},
		{"forbidden", ForbiddenError("bad"), http.StatusForbidden},
		{"conflict", ConflictError("bad"), http.StatusConflict},
		{"internal", InternalServerError("bad"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.status {
				t.Errorf("Status code = %d, want %d", w.Code, tt.status)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != "bad" || body.Session != nil {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
