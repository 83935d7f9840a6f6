package http

import (
	"context"
	"net/http"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/session"
)

// writeOutcome reports a flow step. Errors carry the state so the gateway can
// prompt again.
func writeOutcome(w http.ResponseWriter, r *http.Request, out session.Outcome, err error) {
	state := newSessionJSON(out)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			writeError(w, r, applog.OpSession, err)
			return
		}
		ErrorResponse(status, errorMessage(err, status)).
			JSON(errorBody{Error: errorMessage(err, status), Session: &state}).
			Write(w)
		return
	}

	resp := NewResponse().JSON(state)
	if out.Done && out.Entry != nil {
		resp.Refresh(out.Entry.Partition())
	}
	resp.Write(w)
}

func (s *Server) handleSessionCurrent(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Current(currentUser(r).ID)
	writeOutcome(w, r, session.Outcome{State: st}, nil)
}

func (s *Server) handleSessionBeginAdd(w http.ResponseWriter, r *http.Request) {
	body, ok := parseBody(w, r)
	if !ok {
		return
	}
	p := core.NewPartition(core.Category(body.Get("category")), body.Get("subcat"))
	out, err := s.sessions.BeginAdd(currentUser(r).ID, p)
	writeOutcome(w, r, out, err)
}

func (s *Server) handleSessionBeginRenumber(w http.ResponseWriter, r *http.Request) {
	s.beginOnEntry(w, r, s.sessions.BeginRenumber)
}

func (s *Server) handleSessionBeginEdit(w http.ResponseWriter, r *http.Request) {
	s.beginOnEntry(w, r, s.sessions.BeginEdit)
}

func (s *Server) beginOnEntry(w http.ResponseWriter, r *http.Request, begin func(ctx context.Context, user, id int64) (session.Outcome, error)) {
	body, ok := parseBody(w, r)
	if !ok {
		return
	}
	id, ok := body.GetInt64("id")
	if !ok || id <= 0 {
		UnprocessableEntityError("invalid entry id").Write(w)
		return
	}
	out, err := begin(r.Context(), currentUser(r).ID, id)
	writeOutcome(w, r, out, err)
}

func (s *Server) handleSessionText(w http.ResponseWriter, r *http.Request) {
	body, ok := parseBody(w, r)
	if !ok {
		return
	}
	out, err := s.sessions.HandleText(r.Context(), currentUser(r).ID, body.GetText("text"))
	writeOutcome(w, r, out, err)
}

func (s *Server) handleSessionOwner(w http.ResponseWriter, r *http.Request) {
	body, ok := parseBody(w, r)
	if !ok {
		return
	}
	out, err := s.sessions.ChooseOwner(r.Context(), currentUser(r).ID, core.Owner(body.Get("owner")))
	writeOutcome(w, r, out, err)
}

// handleSessionCancel drops the flow. The partition it ran in is where the
// gateway goes back to.
func (s *Server) handleSessionCancel(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Cancel(currentUser(r).ID)
	idle := session.State{Kind: session.Idle, Partition: st.Partition}
	writeOutcome(w, r, session.Outcome{State: idle, Done: true}, nil)
}
