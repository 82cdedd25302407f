package server

import (
	"net/http"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

type sessionResponse struct {
	ID    string               `json:"id"`
	View  workspace.View       `json:"view"`
	Merge []document.Summary   `json:"merge"`
	Split workspace.SplitState `json:"split"`
}

func newSessionResponse(sess *workspace.Session) sessionResponse {
	return sessionResponse{
		ID:    sess.ID,
		View:  sess.View(),
		Merge: sess.Merge.Summaries(),
		Split: sess.Split.State(),
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("sid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setView(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	var req struct {
		View string `json:"view"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := workspace.ParseView(req.View)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetView(v)
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}
