package http

import (
	"net/http"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/services"
)

func newEntryInput(p core.Partition, body *RequestBodyParser) services.NewEntry {
	return services.NewEntry{
		Partition: p,
		Content:   body.GetText("content"),
		Owner:     core.Owner(body.Get("owner")),
	}
}

// entryHandler adapts an operation on the entry named by {id}.
func (s *Server) entryHandler(fn func(w http.ResponseWriter, r *http.Request, id int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			UnprocessableEntityError("invalid entry id").Write(w)
			return
		}
		fn(w, r, id)
	}
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		e, err := s.tasks.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, applog.OpRead, err)
			return
		}
		NewResponse().JSON(newEntryJSON(e)).Write(w)
	})(w, r)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		e, err := s.tasks.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, applog.OpDelete, err)
			return
		}
		NewResponse().Status(http.StatusNoContent).Refresh(e.Partition()).Write(w)
	})(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		e, err := s.tasks.Toggle(r.Context(), id)
		if err != nil {
			writeError(w, r, applog.OpToggle, err)
			return
		}
		NewResponse().Refresh(e.Partition()).JSON(newEntryJSON(e)).Write(w)
	})(w, r)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		e, err := s.tasks.Copy(r.Context(), id)
		if err != nil {
			writeError(w, r, applog.OpCopy, err)
			return
		}
		NewResponse().
			Status(http.StatusCreated).
			Header("Location", "/api/entries/"+formatID(e.ID)).
			Refresh(e.Partition()).
			JSON(newEntryJSON(e)).
			Write(w)
	})(w, r)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		body, ok := parseBody(w, r)
		if !ok {
			return
		}
		before, err := s.tasks.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, applog.OpMove, err)
			return
		}
		to := core.NewPartition(core.Category(body.Get("category")), body.Get("subcat"))
		e, err := s.tasks.Move(r.Context(), id, to)
		if err != nil {
			writeError(w, r, applog.OpMove, err)
			return
		}
		NewResponse().Refresh(before.Partition(), e.Partition()).JSON(newEntryJSON(e)).Write(w)
	})(w, r)
}

func (s *Server) handleRenumber(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		body, ok := parseBody(w, r)
		if !ok {
			return
		}
		e, err := s.tasks.RenumberText(r.Context(), id, body.Get("number"))
		if err != nil {
			writeError(w, r, applog.OpRenumber, err)
			return
		}
		NewResponse().Refresh(e.Partition()).JSON(newEntryJSON(e)).Write(w)
	})(w, r)
}

func (s *Server) handleEditContent(w http.ResponseWriter, r *http.Request) {
	s.entryHandler(func(w http.ResponseWriter, r *http.Request, id int64) {
		body, ok := parseBody(w, r)
		if !ok {
			return
		}
		e, err := s.tasks.EditContent(r.Context(), id, body.GetText("content"))
		if err != nil {
			writeError(w, r, applog.OpEdit, err)
			return
		}
		NewResponse().Refresh(e.Partition()).JSON(newEntryJSON(e)).Write(w)
	})(w, r)
}
