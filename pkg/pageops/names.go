package pageops

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MergedName is the download name of a merge result created at t.
func MergedName(t time.Time) string {
	return fmt.Sprintf("pdf_master_merged_%d.pdf", t.UnixMilli())
}

// SelectionName is the download name of pages extracted from name.
func SelectionName(name string) string {
	return "split_selection_" + CleanName(name)
}

// PageName is the name of the single-page document holding page n of name.
func PageName(n int, name string) string {
	return fmt.Sprintf("page_%d_%s", n, CleanName(name))
}

// ArchiveName is the download name of the ZIP holding every page of name.
func ArchiveName(name string) string {
	base := CleanName(name)
	if ext := path.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	return "pages_" + base + ".zip"
}

// CleanName reduces an uploaded file name to a safe base name in NFC form.
func CleanName(name string) string {
	name = norm.NFC.String(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}

// ParsePages parses a selection such as "1,3,5-7" into sorted unique page
// numbers, each within 1..max.
func ParsePages(spec string, max int) ([]int, error) {
	var pages []int
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(field, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("pageops: invalid page %q", field)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("pageops: invalid page range %q", field)
			}
			if last < first {
				return nil, fmt.Errorf("pageops: descending page range %q", field)
			}
		}
		if first < 1 {
			return nil, &PageRangeError{Page: first, Pages: max}
		}
		if last > max {
			return nil, &PageRangeError{Page: last, Pages: max}
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return normalize(pages, max)
}
