package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

func (s *Server) setSplitFile(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	files, cleanup, err := multipartFiles(r, "file")
	defer cleanup()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u := s.loadUploads(r.Context(), files[:1])[0]
	if u.err != nil {
		s.writeError(w, r, u.err)
		return
	}
	sess.Split.SetDocument(u.doc)
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) removeSplitFile(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	sess.Split.RemoveDocument()
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) splitState(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) togglePage(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	page, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Split.Toggle(page); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) selectAll(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	if err := sess.Split.SelectAll(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	if err := sess.Split.ClearSelection(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := workspace.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Split.SetMode(mode); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Split.State())
}

func (s *Server) thumbnail(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	page, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := sess.Split.Document()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	th, err := s.renderer.Render(r.Context(), doc, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(th.PNG)))
	if th.Placeholder {
		h.Set("X-Thumbnail-Placeholder", "true")
		h.Set("Cache-Control", "no-store")
	} else {
		h.Set("Cache-Control", "private, max-age=3600")
	}
	_, _ = w.Write(th.PNG)
}

func (s *Server) split(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	doc, mode, selected, err := sess.Split.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	switch mode {
	case workspace.ModeAll:
		if err := s.engine.BurstArchive(r.Context(), &buf, doc); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.sendFile(w, "application/zip", pageops.ArchiveName(doc.Name), &buf)
	default:
		if err := s.engine.Extract(r.Context(), &buf, doc, selected); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.sendFile(w, document.MIMEType, pageops.SelectionName(doc.Name), &buf)
	}
}
