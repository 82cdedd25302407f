// Package pageops assembles new PDF documents from pages of uploaded ones:
// merging whole files in order, extracting a page selection, and bursting a
// file into single-page documents.
//
// All PDF work is done by pdfcpu; this package only decides which pages go
// where and what the results are called.
package pageops

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

// MinMergeFiles is the smallest number of files Merge accepts.
const MinMergeFiles = 2

var (
	ErrTooFewFiles = fmt.Errorf("pageops: at least %d files are required to merge", MinMergeFiles)
	ErrNoPages     = errors.New("pageops: no pages selected")
)

// PageRangeError reports a page number outside the document.
type PageRangeError struct {
	Page  int
	Pages int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("pageops: page %d out of range 1-%d", e.Page, e.Pages)
}

// Engine runs page operations. It is safe for concurrent use.
type Engine struct {
	logger     *zap.Logger
	validation int
	workers    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithValidation sets the pdfcpu validation mode, model.ValidationRelaxed
// by default.
func WithValidation(mode int) Option {
	return func(e *Engine) { e.validation = mode }
}

// WithWorkers bounds the number of pages Burst extracts at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:     zap.NewNop(),
		validation: model.ValidationRelaxed,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// config returns a per-call configuration; pdfcpu writes the current command
// into it.
func (e *Engine) config() *model.Configuration {
	conf := document.Config("")
	conf.ValidationMode = e.validation
	return conf
}
