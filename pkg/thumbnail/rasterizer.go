package thumbnail

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer turns one page of a PDF into an image. scale 1 means one pixel
// per PDF point.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, page int, scale float64) (image.Image, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, data []byte, page int, scale float64) (image.Image, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, data []byte, page int, scale float64) (image.Image, error) {
	return f(ctx, data, page, scale)
}

// FitzRasterizer renders pages with MuPDF through go-fitz.
type FitzRasterizer struct{}

// Rasterize implements Rasterizer.
func (FitzRasterizer) Rasterize(ctx context.Context, data []byte, page int, scale float64) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		if doc != nil {
			doc.Close()
		}
		return nil, fmt.Errorf("thumbnail: parsing document: %w", err)
	}
	defer doc.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := doc.ImageDPI(page-1, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: rendering page %d: %w", page, err)
	}
	return img, nil
}
