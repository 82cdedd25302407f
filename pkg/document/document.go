// Package document loads uploaded PDF files into immutable in-memory documents.
//
// Page counting is done with pdfcpu; descriptive metadata (title, author,
// version) is read with MuPDF through go-fitz and is best effort only.
package document

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// DefaultMaxSize is the upload limit used when no WithMaxSize option is given.
const DefaultMaxSize = 100 << 20

// MIMEType is the content type of PDF downloads.
const MIMEType = "application/pdf"

// headerWindow is how far into a file the %PDF- marker may start. Readers
// tolerate leading bytes such as a CR/LF or a byte order mark.
const headerWindow = 1024

var pdfHeader = []byte("%PDF-")

var (
	ErrEmpty    = errors.New("document: file is empty")
	ErrTooLarge = errors.New("document: file exceeds size limit")
	ErrNotPDF   = errors.New("document: not a PDF file")
	ErrNoPages  = errors.New("document: PDF has no pages")
)

// LoadError reports a file that looked like a PDF but could not be parsed.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("document: cannot load %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Info is descriptive metadata from the document information dictionary.
type Info struct {
	Title   string
	Author  string
	Version string
}

// Document is an uploaded PDF. It is safe for concurrent use; the bytes are
// never modified after Load returns.
type Document struct {
	ID     string
	Name   string
	Size   int64
	Pages  int
	Digest string
	Info   Info

	data []byte
}

type options struct {
	maxSize  int64
	password string
	logger   *zap.Logger
}

// Option configures Load and Open.
type Option func(*options)

// WithMaxSize sets the largest accepted file in bytes.
func WithMaxSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithPassword sets the user password for encrypted files.
func WithPassword(pw string) Option {
	return func(o *options) { o.password = pw }
}

// WithLogger sets the logger used for metadata diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

var configOnce sync.Once

// Config returns a fresh pdfcpu configuration in relaxed validation mode.
// pdfcpu records the running command in its configuration, so callers must
// not share the returned value between concurrent calls.
func Config(password string) *model.Configuration {
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

// Load reads a PDF from r. name is kept for display and download names.
func Load(ctx context.Context, name string, r io.Reader, opts ...Option) (*Document, error) {
	o := options{maxSize: DefaultMaxSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(io.LimitReader(r, o.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("document: reading %s: %w", name, err)
	}
	if int64(len(data)) > o.maxSize {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if !hasHeader(data) {
		return nil, ErrNotPDF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := api.PageCount(bytes.NewReader(data), Config(o.password))
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	if pages == 0 {
		return nil, ErrNoPages
	}

	sum := blake2b.Sum256(data)
	doc := &Document{
		ID:     uuid.NewString(),
		Name:   name,
		Size:   int64(len(data)),
		Pages:  pages,
		Digest: hex.EncodeToString(sum[:]),
		data:   data,
	}
	doc.Info = readInfo(data, o.logger.With(zap.String("name", name)))
	return doc, nil
}

func hasHeader(data []byte) bool {
	return bytes.Contains(data[:min(len(data), headerWindow)], pdfHeader)
}

// Open loads the PDF at path.
func Open(ctx context.Context, path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(ctx, filepath.Base(path), f, opts...)
}

func readInfo(data []byte, logger *zap.Logger) Info {
	fd, err := fitz.NewFromMemory(data)
	if err != nil {
		if fd != nil {
			fd.Close()
		}
		logger.Debug("metadata unavailable", zap.Error(err))
		return Info{}
	}
	defer fd.Close()

	meta := fd.Metadata()
	return Info{
		Title:   cString(meta["title"]),
		Author:  cString(meta["author"]),
		Version: strings.TrimPrefix(cString(meta["format"]), "PDF "),
	}
}

// cString cuts a MuPDF metadata value at its NUL terminator.
func cString(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Bytes returns the file contents. The slice must not be modified.
func (d *Document) Bytes() []byte { return d.data }

// Reader returns a new reader positioned at the start of the file.
func (d *Document) Reader() io.ReadSeeker { return bytes.NewReader(d.data) }

// SizeLabel formats the file size in megabytes with two decimals.
func (d *Document) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(d.Size)/1024/1024)
}

// PageNumbers returns 1..Pages.
func (d *Document) PageNumbers() []int {
	nums := make([]int, d.Pages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Summary is the JSON view of a document.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"size_label"`
	Pages     int    `json:"pages"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Summary returns the JSON view of d.
func (d *Document) Summary() Summary {
	return Summary{
		ID:        d.ID,
		Name:      d.Name,
		Size:      d.Size,
		SizeLabel: d.SizeLabel(),
		Pages:     d.Pages,
		Title:     d.Info.Title,
		Author:    d.Info.Author,
		Version:   d.Info.Version,
	}
}
