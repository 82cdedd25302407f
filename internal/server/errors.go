package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
	"github.com/novvoo/go-pdfmaster/pkg/thumbnail"
	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

// errBadRequest marks malformed client input such as an unreadable JSON body.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps an error from the packages below to an HTTP status.
func statusOf(err error) int {
	var (
		rangeErr *pageops.PageRangeError
		loadErr  *document.LoadError
		maxErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, workspace.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, workspace.ErrInvalid),
		errors.Is(err, workspace.ErrIndexOutOfRange),
		errors.Is(err, workspace.ErrPageOutOfRange),
		errors.Is(err, thumbnail.ErrPageOutOfRange),
		errors.As(err, &rangeErr):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, document.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pageops.ErrTooFewFiles),
		errors.Is(err, pageops.ErrNoPages),
		errors.Is(err, document.ErrNoPages),
		errors.Is(err, document.ErrEmpty),
		errors.Is(err, workspace.ErrNoDocument),
		errors.Is(err, workspace.ErrSelectionDisabled),
		errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		// client went away
		return 499
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
