package pageops

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

// Part is a single-page document produced by Burst.
type Part struct {
	Page int
	Name string
	Data []byte
}

// Extract copies the given 1-based pages of doc into one new document.
// Pages are written in ascending order; duplicates are ignored.
func (e *Engine) Extract(ctx context.Context, w io.Writer, doc *document.Document, pages []int) error {
	selected, err := normalize(pages, doc.Pages)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := e.trim(w, doc, selected); err != nil {
		return err
	}

	e.logger.Info("extracted",
		zap.String("name", doc.Name),
		zap.Int("pages", len(selected)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Burst splits doc into one document per page. Parts are in page order.
func (e *Engine) Burst(ctx context.Context, doc *document.Document) ([]Part, error) {
	parts := make([]Part, doc.Pages)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range parts {
		page := i + 1
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := e.trim(&buf, doc, []int{page}); err != nil {
				return err
			}
			parts[page-1] = Part{
				Page: page,
				Name: PageName(page, doc.Name),
				Data: buf.Bytes(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("burst", zap.String("name", doc.Name), zap.Int("pages", doc.Pages))
	return parts, nil
}

// BurstArchive writes every page of doc as its own PDF into a ZIP archive.
func (e *Engine) BurstArchive(ctx context.Context, w io.Writer, doc *document.Document) error {
	parts, err := e.Burst(ctx, doc)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		f, err := zw.Create(p.Name)
		if err != nil {
			return fmt.Errorf("pageops: archiving %s: %w", p.Name, err)
		}
		if _, err := f.Write(p.Data); err != nil {
			return fmt.Errorf("pageops: archiving %s: %w", p.Name, err)
		}
	}
	return zw.Close()
}

func (e *Engine) trim(w io.Writer, doc *document.Document, pages []int) error {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	if err := api.Trim(doc.Reader(), w, sel, e.config()); err != nil {
		return fmt.Errorf("pageops: extracting pages from %s: %w", doc.Name, err)
	}
	return nil
}

// normalize sorts and deduplicates pages and checks them against max.
func normalize(pages []int, max int) ([]int, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	out := slices.Clone(pages)
	slices.Sort(out)
	out = slices.Compact(out)
	for _, p := range out {
		if p < 1 || p > max {
			return nil, &PageRangeError{Page: p, Pages: max}
		}
	}
	return out, nil
}
