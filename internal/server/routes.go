package server

import (
	"net/http"

	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.view(workspace.ViewHome))
	mux.HandleFunc("GET /merge", s.view(workspace.ViewMerge))
	mux.HandleFunc("GET /split", s.view(workspace.ViewSplit))
	mux.Handle("GET /static/", staticHandler())

	mux.HandleFunc("POST /api/sessions", s.createSession)
	mux.HandleFunc("GET /api/sessions/{sid}", s.withSession(s.getSession))
	mux.HandleFunc("DELETE /api/sessions/{sid}", s.deleteSession)
	mux.HandleFunc("PUT /api/sessions/{sid}/view", s.withSession(s.setView))

	mux.HandleFunc("POST /api/sessions/{sid}/merge/files", s.limitBody(s.withSession(s.addMergeFiles)))
	mux.HandleFunc("GET /api/sessions/{sid}/merge/files", s.withSession(s.listMergeFiles))
	mux.HandleFunc("DELETE /api/sessions/{sid}/merge/files", s.withSession(s.clearMergeFiles))
	mux.HandleFunc("DELETE /api/sessions/{sid}/merge/files/{id}", s.withSession(s.removeMergeFile))
	mux.HandleFunc("POST /api/sessions/{sid}/merge/move", s.withSession(s.moveMergeFile))
	mux.HandleFunc("POST /api/sessions/{sid}/merge", s.withSession(s.merge))

	mux.HandleFunc("PUT /api/sessions/{sid}/split/file", s.limitBody(s.withSession(s.setSplitFile)))
	mux.HandleFunc("DELETE /api/sessions/{sid}/split/file", s.withSession(s.removeSplitFile))
	mux.HandleFunc("GET /api/sessions/{sid}/split", s.withSession(s.splitState))
	mux.HandleFunc("POST /api/sessions/{sid}/split/pages/{page}/toggle", s.withSession(s.togglePage))
	mux.HandleFunc("POST /api/sessions/{sid}/split/select-all", s.withSession(s.selectAll))
	mux.HandleFunc("POST /api/sessions/{sid}/split/clear", s.withSession(s.clearSelection))
	mux.HandleFunc("PUT /api/sessions/{sid}/split/mode", s.withSession(s.setMode))
	mux.HandleFunc("GET /api/sessions/{sid}/split/pages/{page}/thumbnail", s.withSession(s.thumbnail))
	mux.HandleFunc("POST /api/sessions/{sid}/split", s.withSession(s.split))

	return mux
}

type sessionHandler func(http.ResponseWriter, *http.Request, *workspace.Session)

// withSession resolves the {sid} path value before calling next.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(r.PathValue("sid"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r, sess)
	}
}
