package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tracker/internal/core"
	applog "tracker/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.views.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(newDashboardJSON(d)).Write(w)
}

func (s *Server) handlePartitions(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"partitions": partitionsJSON(),
		"owners":     s.tasks.Participants().Owners(),
	}).Write(w)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	p, err := pathPartition(r)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	v, err := s.views.List(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(newViewJSON(v)).Write(w)
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	owner := core.Owner(sanitizeInput(chi.URLParam(r, "owner")))
	st, err := s.views.Statement(r.Context(), owner)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	NewResponse().JSON(newStatementJSON(st)).Write(w)
}

// handleAddEntry creates an entry in one request, without the session flow.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	p, err := pathPartition(r)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	body, ok := parseBody(w, r)
	if !ok {
		return
	}

	e, err := s.tasks.Add(r.Context(), newEntryInput(p, body))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/"+formatID(e.ID)).
		Refresh(p).
		JSON(newEntryJSON(e)).
		Write(w)
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	p, err := pathPartition(r)
	if err != nil {
		writeError(w, r, applog.OpCompact, err)
		return
	}
	n, err := s.tasks.Compact(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpCompact, err)
		return
	}
	NewResponse().Refresh(p).JSON(countJSON{Count: int64(n)}).Write(w)
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	p, err := pathPartition(r)
	if err != nil {
		writeError(w, r, applog.OpClearCompleted, err)
		return
	}
	n, err := s.tasks.ClearCompleted(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpClearCompleted, err)
		return
	}
	NewResponse().Refresh(p).JSON(countJSON{Count: n}).Write(w)
}
