package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
)

// Multipart parts above this size are spooled to disk.
const maxMemory = 32 << 20

type upload struct {
	name string
	doc  *document.Document
	err  error
}

type fileError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// multipartFiles parses the request form and returns the files sent under
// field. The caller must call cleanup.
func multipartFiles(r *http.Request, field string) (files []*multipart.FileHeader, cleanup func(), err error) {
	cleanup = func() {}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, cleanup, err
		}
		return nil, cleanup, errors.Join(errBadRequest, err)
	}
	cleanup = func() { _ = r.MultipartForm.RemoveAll() }
	files = r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, cleanup, fmt.Errorf("%w: no files in form field %q", errBadRequest, field)
	}
	return files, cleanup, nil
}

// loadUploads loads every file concurrently. Results keep the upload order;
// a file that fails carries its error instead of a document.
func (s *Server) loadUploads(ctx context.Context, files []*multipart.FileHeader) []upload {
	out := make([]upload, len(files))
	workers := s.config().Thumbnail.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	opts := s.documentOptions()

	var g errgroup.Group
	g.SetLimit(workers)
	for i, fh := range files {
		name := pageops.CleanName(fh.Filename)
		out[i].name = name
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				out[i].err = err
				return nil
			}
			defer f.Close()
			out[i].doc, out[i].err = document.Load(ctx, name, f, opts...)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// sendFile writes data as a download named name.
func (s *Server) sendFile(w http.ResponseWriter, contentType, name string, data *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(data.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := data.WriteTo(w); err != nil {
		s.logger.Debug("download interrupted", zap.String("name", name), zap.Error(err))
	}
}

// pageParam reads the {page} path value.
func pageParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		return 0, fmt.Errorf("%w: page %q is not a number", errBadRequest, r.PathValue("page"))
	}
	return n, nil
}

func (s *Server) logSkipped(name string, err error) {
	s.logger.Info("upload skipped", zap.String("name", name), zap.Error(err))
}
