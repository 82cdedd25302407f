package pageops

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

// Merge writes every page of docs to w, file by file in slice order.
func (e *Engine) Merge(ctx context.Context, w io.Writer, docs []*document.Document) error {
	if len(docs) < MinMergeFiles {
		return ErrTooFewFiles
	}

	readers := make([]io.ReadSeeker, len(docs))
	pages := 0
	for i, doc := range docs {
		readers[i] = doc.Reader()
		pages += doc.Pages
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := api.MergeRaw(readers, w, false, e.config()); err != nil {
		return fmt.Errorf("pageops: merging %d files: %w", len(docs), err)
	}

	e.logger.Info("merged",
		zap.Int("files", len(docs)),
		zap.Int("pages", pages),
		zap.Duration("took", time.Since(start)))
	return nil
}
