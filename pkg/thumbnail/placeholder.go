package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	cardColor  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	lineColor  = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
	labelColor = color.RGBA{0x4b, 0x55, 0x63, 0xff}
)

var (
	fontOnce sync.Once
	labelTTF *truetype.Font
	fontErr  error
)

func labelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		labelTTF, fontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelTTF, fontErr
}

// placeholder draws the card shown for a page that could not be rendered:
// a light background, a few text-like bars and the page label.
func placeholder(page, width, height int) (*image.RGBA, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(cardColor), image.Point{}, draw.Src)

	// Bars at 60%, 66% and 72% of the height, of varying length.
	for i, frac := range []float64{0.75, 1.0, 0.66} {
		y := height*60/100 + i*height*6/100
		w := int(float64(width) * 0.6 * frac)
		x := (width - w) / 2
		bar := image.Rect(x, y, x+w, y+max(1, height/200))
		draw.Draw(img, bar, image.NewUniform(lineColor), image.Point{}, draw.Src)
	}

	f, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("thumbnail: loading label font: %w", err)
	}
	size := float64(width) / 10
	if size < 8 {
		size = 8
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(size)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(labelColor))
	c.SetHinting(font.HintingFull)

	label := fmt.Sprintf("Page %d", page)
	// Roughly centre the label; Go Regular averages about 0.55em per glyph.
	textWidth := int(float64(len(label)) * size * 0.55)
	pt := freetype.Pt((width-textWidth)/2, height*45/100)
	if _, err := c.DrawString(label, pt); err != nil {
		return nil, fmt.Errorf("thumbnail: drawing label: %w", err)
	}
	return img, nil
}
