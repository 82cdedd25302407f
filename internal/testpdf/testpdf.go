// Package testpdf builds small, valid PDF files for tests.
//
// Every page gets a distinct MediaBox width (BaseWidth + 10*(n-1) for page n)
// so callers can recognise pages after they have been reordered or copied.
package testpdf

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	api.DisableConfigDir()
}

const (
	// BaseWidth is the MediaBox width of page 1.
	BaseWidth = 300
	// Height is the MediaBox height of every page.
	Height = 400
)

// Options tweak the generated document.
type Options struct {
	// FirstWidth overrides BaseWidth for page 1; later pages still step by 10.
	FirstWidth int
	Title      string
	Author     string
}

// PageWidth returns the MediaBox width Build gives page n (1-based).
func PageWidth(first, n int) int {
	if first == 0 {
		first = BaseWidth
	}
	return first + 10*(n-1)
}

// Build returns a PDF with the given number of pages.
func Build(pages int, opts ...Options) []byte {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	var buf bytes.Buffer
	var offsets []int

	begin := func() int {
		offsets = append(offsets, buf.Len())
		num := len(offsets)
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		return num
	}
	end := func() { buf.WriteString("endobj\n") }

	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	// 1: catalog, 2: pages, 3: font, 4: info, then page/contents pairs.
	begin()
	buf.WriteString("<< /Type /Catalog /Pages 2 0 R >>\n")
	end()

	begin()
	buf.WriteString("<< /Type /Pages /Kids [")
	for i := 0; i < pages; i++ {
		if i > 0 {
			buf.WriteString(" ")
		}
		fmt.Fprintf(&buf, "%d 0 R", 5+i*2)
	}
	fmt.Fprintf(&buf, "] /Count %d >>\n", pages)
	end()

	begin()
	buf.WriteString("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\n")
	end()

	begin()
	buf.WriteString("<< /Producer (testpdf)")
	if o.Title != "" {
		fmt.Fprintf(&buf, " /Title (%s)", o.Title)
	}
	if o.Author != "" {
		fmt.Fprintf(&buf, " /Author (%s)", o.Author)
	}
	buf.WriteString(" >>\n")
	end()

	for i := 1; i <= pages; i++ {
		pageObj := begin()
		fmt.Fprintf(&buf, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] ", PageWidth(o.FirstWidth, i), Height)
		fmt.Fprintf(&buf, "/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\n", pageObj+1)
		end()

		content := fmt.Sprintf("BT /F1 24 Tf 40 300 Td (Page %d) Tj ET", i)
		begin()
		fmt.Fprintf(&buf, "<< /Length %d >>\nstream\n%s\nendstream\n", len(content), content)
		end()
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\n", len(offsets)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)

	return buf.Bytes()
}

// WriteFile writes a generated PDF into dir and returns its path.
func WriteFile(t testing.TB, dir, name string, pages int, opts ...Options) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages, opts...), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

// Encrypt returns data protected with AES-256 under password, used as both
// the user and the owner password.
func Encrypt(t testing.TB, data []byte, password string) []byte {
	t.Helper()
	conf := model.NewAESConfiguration(password, password, 256)
	conf.ValidationMode = model.ValidationRelaxed
	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &buf, conf); err != nil {
		t.Fatalf("encrypting fixture: %v", err)
	}
	return buf.Bytes()
}

// Widths reads the MediaBox width of every page in data, in page order.
func Widths(t testing.TB, data []byte) []int {
	t.Helper()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		t.Fatalf("reading page dimensions: %v", err)
	}
	widths := make([]int, len(dims))
	for i, d := range dims {
		widths[i] = int(math.Round(d.Width))
	}
	return widths
}
