// Package thumbnail renders PDF pages into PNG thumbnails for page pickers.
//
// Rendering is delegated to a Rasterizer (MuPDF through go-fitz by default). Pages that
// cannot be rendered get a drawn placeholder instead of an error, so a page
// grid always has something to show.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"runtime"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

const (
	// DefaultScale renders one and a half pixels per PDF point.
	DefaultScale = 1.5
	// DefaultCacheSize is the number of encoded thumbnails kept in memory.
	DefaultCacheSize = 256

	// placeholder size in points, A4 portrait
	placeholderWidth  = 595
	placeholderHeight = 842
)

var ErrPageOutOfRange = errors.New("thumbnail: page out of range")

// Thumbnail is one rendered page.
type Thumbnail struct {
	Page        int
	Width       int
	Height      int
	PNG         []byte
	Placeholder bool
}

type cacheKey struct {
	digest string
	page   int
	scale  float64
	width  int
}

// Renderer produces thumbnails. It is safe for concurrent use.
type Renderer struct {
	raster   Rasterizer
	scale    float64
	maxWidth int
	workers  int
	logger   *zap.Logger

	mu    sync.Mutex
	cache *lru.Cache
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithScale sets the render scale (pixels per point).
func WithScale(s float64) Option {
	return func(r *Renderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithMaxWidth down-scales thumbnails wider than w pixels. Zero disables it.
func WithMaxWidth(w int) Option {
	return func(r *Renderer) {
		if w >= 0 {
			r.maxWidth = w
		}
	}
}

// WithCacheSize sets how many thumbnails are cached. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(r *Renderer) {
		if n <= 0 {
			r.cache = nil
			return
		}
		r.cache = lru.New(n)
	}
}

// WithWorkers bounds concurrent renders in RenderAll.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer creates a Renderer backed by raster. A nil raster uses
// FitzRasterizer.
func NewRenderer(raster Rasterizer, opts ...Option) *Renderer {
	if raster == nil {
		raster = FitzRasterizer{}
	}
	r := &Renderer{
		raster:  raster,
		scale:   DefaultScale,
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
		cache:   lru.New(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scale returns the render scale.
func (r *Renderer) Scale() float64 { return r.scale }

// Render returns the thumbnail of one page of doc.
func (r *Renderer) Render(ctx context.Context, doc *document.Document, page int) (*Thumbnail, error) {
	if page < 1 || page > doc.Pages {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, doc.Pages)
	}

	key := cacheKey{digest: doc.Digest, page: page, scale: r.scale, width: r.maxWidth}
	if th, ok := r.lookup(key); ok {
		return th, nil
	}

	img, err := r.raster.Rasterize(ctx, doc.Bytes(), page, r.scale)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	placeholderUsed := false
	if err != nil {
		r.logger.Warn("page render failed, using placeholder",
			zap.String("name", doc.Name),
			zap.Int("page", page),
			zap.Error(err))
		img, err = placeholder(page, int(placeholderWidth*r.scale), int(placeholderHeight*r.scale))
		if err != nil {
			return nil, err
		}
		placeholderUsed = true
	}

	img = r.fit(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("thumbnail: encoding page %d: %w", page, err)
	}

	b := img.Bounds()
	th := &Thumbnail{
		Page:        page,
		Width:       b.Dx(),
		Height:      b.Dy(),
		PNG:         buf.Bytes(),
		Placeholder: placeholderUsed,
	}
	if !placeholderUsed {
		r.store(key, th)
	}
	return th, nil
}

// RenderAll renders every page of doc and calls fn for each thumbnail. fn may
// be called concurrently and in any page order. The first error stops the
// remaining renders.
func (r *Renderer) RenderAll(ctx context.Context, doc *document.Document, fn func(*Thumbnail) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, page := range doc.PageNumbers() {
		g.Go(func() error {
			th, err := r.Render(ctx, doc, page)
			if err != nil {
				return err
			}
			return fn(th)
		})
	}
	return g.Wait()
}

// fit down-scales img to the configured maximum width.
func (r *Renderer) fit(img image.Image) image.Image {
	b := img.Bounds()
	if r.maxWidth <= 0 || b.Dx() <= r.maxWidth {
		return img
	}
	h := b.Dy() * r.maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (r *Renderer) lookup(key cacheKey) (*Thumbnail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return nil, false
	}
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Thumbnail), true
}

func (r *Renderer) store(key cacheKey, th *Thumbnail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache != nil {
		r.cache.Add(key, th)
	}
}
