package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type viewData struct {
	Title   string
	View    workspace.View
	Session string
}

var viewTitles = map[workspace.View]string{
	workspace.ViewHome:  "PDF Master",
	workspace.ViewMerge: "Merge PDF files",
	workspace.ViewSplit: "Split a PDF file",
}

func parseViews() (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("server: parsing templates: %w", err)
	}
	return t, nil
}

// view renders the page for v. A ?session= query moves that session to v.
func (s *Server) view(v workspace.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := viewData{Title: viewTitles[v], View: v}
		if sid := r.URL.Query().Get("session"); sid != "" {
			if sess, err := s.store.Get(sid); err == nil {
				sess.SetView(v)
				data.Session = sess.ID
			}
		}

		var buf bytes.Buffer
		if err := s.views.ExecuteTemplate(&buf, string(v)+".html", data); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
