package document

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/novvoo/go-pdfmaster/internal/testpdf"
)

// TestLoad tests loading a generated PDF
func TestLoad(t *testing.T) {
	data := testpdf.Build(3, testpdf.Options{Title: "Quarterly", Author: "Finance"})

	doc, err := Load(context.Background(), "report.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}

	if doc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", doc.Pages)
	}
	if doc.Name != "report.pdf" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", doc.Size, len(data))
	}
	if doc.ID == "" {
		t.Error("ID should not be empty")
	}
	if len(doc.Digest) != 64 {
		t.Errorf("Digest should be 64 hex chars, got %q", doc.Digest)
	}
	if !bytes.Equal(doc.Bytes(), data) {
		t.Error("Bytes should return the original file")
	}

	if doc.Info.Title != "Quarterly" {
		t.Errorf("Title = %q, want Quarterly", doc.Info.Title)
	}
	if doc.Info.Author != "Finance" {
		t.Errorf("Author = %q, want Finance", doc.Info.Author)
	}
	if doc.Info.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", doc.Info.Version)
	}
}

// TestLoadLeadingBytes tests that a line break before the header is tolerated
func TestLoadLeadingBytes(t *testing.T) {
	data := append([]byte("\r\n"), testpdf.Build(2)...)

	doc, err := Load(context.Background(), "lead.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Pages != 2 {
		t.Errorf("Pages = %d, want 2", doc.Pages)
	}
}

// TestHasHeader tests where the %PDF- marker may appear
func TestHasHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"at start", []byte("%PDF-1.7\n"), true},
		{"after bom", []byte("\xef\xbb\xbf%PDF-1.4"), true},
		{"after junk", append(bytes.Repeat([]byte("x"), 1000), "%PDF-1.4"...), true},
		{"past window", append(bytes.Repeat([]byte("x"), 1024), "%PDF-1.4"...), false},
		{"short", []byte("%PD"), false},
		{"text", []byte("PDF file"), false},
	}
	for _, tt := range tests {
		if got := hasHeader(tt.data); got != tt.want {
			t.Errorf("%s: hasHeader = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// TestLoadEncrypted tests opening a password protected file
func TestLoadEncrypted(t *testing.T) {
	data := testpdf.Encrypt(t, testpdf.Build(3), "secret")

	doc, err := Load(context.Background(), "locked.pdf", bytes.NewReader(data), WithPassword("secret"))
	if err != nil {
		t.Fatalf("Load with password: %v", err)
	}
	if doc.Pages != 3 {
		t.Errorf("Pages = %d, want 3", doc.Pages)
	}

	_, err = Load(context.Background(), "locked.pdf", bytes.NewReader(data))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("without password: expected *LoadError, got %v", err)
	}
}

// TestLoadSameFileTwice tests that uploads of identical files stay distinct
func TestLoadSameFileTwice(t *testing.T) {
	data := testpdf.Build(1)

	a, err := Load(context.Background(), "a.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(context.Background(), "a.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if a.ID == b.ID {
		t.Error("IDs of separate uploads must differ")
	}
	if a.Digest != b.Digest {
		t.Error("digests of identical content must match")
	}
}

// TestLoadRejects tests handling of unusable uploads
func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts []Option
		want error
	}{
		{"empty", nil, nil, ErrEmpty},
		{"not pdf", []byte("This is not a PDF file"), nil, ErrNotPDF},
		{"image", []byte("\x89PNG\r\n\x1a\n0000"), nil, ErrNotPDF},
		{"header too late", append(bytes.Repeat([]byte(" "), 1024), testpdf.Build(1)...), nil, ErrNotPDF},
		{"too large", testpdf.Build(2), []Option{WithMaxSize(64)}, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), "x.pdf", bytes.NewReader(tt.data), tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestLoadBrokenPDF tests that a PDF header without a document is a LoadError
func TestLoadBrokenPDF(t *testing.T) {
	_, err := Load(context.Background(), "broken.pdf", strings.NewReader("%PDF-1.4\ngarbage\n"))

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Name != "broken.pdf" {
		t.Errorf("Name = %q", le.Name)
	}
	if !strings.Contains(le.Error(), "broken.pdf") {
		t.Errorf("message should name the file: %s", le.Error())
	}
}

// TestLoadCancelled tests that a cancelled context stops the load
func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "a.pdf", bytes.NewReader(testpdf.Build(1)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestOpen tests loading from disk
func TestOpen(t *testing.T) {
	path := testpdf.WriteFile(t, t.TempDir(), "disk.pdf", 2)

	doc, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Name != "disk.pdf" {
		t.Errorf("Name = %q, want base name", doc.Name)
	}
	if doc.Pages != 2 {
		t.Errorf("Pages = %d, want 2", doc.Pages)
	}

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestSizeLabel tests the megabyte label
func TestSizeLabel(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0.00 MB"},
		{1024 * 1024, "1.00 MB"},
		{1536 * 1024, "1.50 MB"},
		{12345678, "11.77 MB"},
	}
	for _, tt := range tests {
		d := &Document{Size: tt.size}
		if got := d.SizeLabel(); got != tt.want {
			t.Errorf("SizeLabel(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

// TestPageNumbers tests the 1-based page list
func TestPageNumbers(t *testing.T) {
	d := &Document{Pages: 4}
	got := d.PageNumbers()
	want := []int{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

// TestSummary tests the JSON view
func TestSummary(t *testing.T) {
	d := &Document{ID: "id", Name: "n.pdf", Size: 2 * 1024 * 1024, Pages: 7, Info: Info{Title: "T"}}
	s := d.Summary()
	if s.SizeLabel != "2.00 MB" || s.Pages != 7 || s.Title != "T" || s.ID != "id" {
		t.Errorf("unexpected summary: %+v", s)
	}
}
