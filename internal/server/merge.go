package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

type uploadReport struct {
	Files   []document.Summary `json:"files"`
	Added   []document.Summary `json:"added"`
	Skipped []string           `json:"skipped"`
	Failed  []fileError        `json:"failed"`
	Error   string             `json:"error,omitempty"`
}

func (s *Server) addMergeFiles(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	files, cleanup, err := multipartFiles(r, "files")
	defer cleanup()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report := uploadReport{
		Added:   []document.Summary{},
		Skipped: []string{},
		Failed:  []fileError{},
	}
	var (
		docs     []*document.Document
		firstErr error
	)
	for _, u := range s.loadUploads(r.Context(), files) {
		switch {
		case u.err == nil:
			docs = append(docs, u.doc)
			report.Added = append(report.Added, u.doc.Summary())
		case errors.Is(u.err, document.ErrNotPDF):
			s.logSkipped(u.name, u.err)
			report.Skipped = append(report.Skipped, u.name)
		default:
			report.Failed = append(report.Failed, fileError{Name: u.name, Error: u.err.Error()})
		}
		if u.err != nil && firstErr == nil {
			firstErr = u.err
		}
	}
	if err := r.Context().Err(); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Merge.Add(docs...)
	report.Files = sess.Merge.Summaries()

	status := http.StatusOK
	if len(docs) == 0 {
		status = statusOf(firstErr)
		report.Error = firstErr.Error()
	}
	writeJSON(w, status, report)
}

func (s *Server) listMergeFiles(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	writeJSON(w, http.StatusOK, sess.Merge.Summaries())
}

func (s *Server) removeMergeFile(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	if err := sess.Merge.Remove(r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Merge.Summaries())
}

func (s *Server) clearMergeFiles(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	sess.Merge.Clear()
	writeJSON(w, http.StatusOK, sess.Merge.Summaries())
}

func (s *Server) moveMergeFile(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.From == nil || req.To == nil {
		s.writeError(w, r, errors.Join(errBadRequest, errors.New("from and to are required")))
		return
	}
	if err := sess.Merge.Move(*req.From, *req.To); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Merge.Summaries())
}

func (s *Server) merge(w http.ResponseWriter, r *http.Request, sess *workspace.Session) {
	if err := sess.Merge.Ready(); err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.engine.Merge(r.Context(), &buf, sess.Merge.Files()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendFile(w, document.MIMEType, pageops.MergedName(time.Now()), &buf)
}
