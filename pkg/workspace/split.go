package workspace

import (
	"fmt"
	"slices"
	"sync"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

// SplitMode selects what a split produces.
type SplitMode string

const (
	// ModeRange copies the selected pages into one document.
	ModeRange SplitMode = "range"
	// ModeAll produces one document per page. Page selection is disabled.
	ModeAll SplitMode = "all"
)

// ParseMode validates a mode name.
func ParseMode(s string) (SplitMode, error) {
	switch m := SplitMode(s); m {
	case ModeRange, ModeAll:
		return m, nil
	}
	return "", fmt.Errorf("%w: split mode %q", ErrInvalid, s)
}

// SplitSession holds the file being split and the page selection.
type SplitSession struct {
	mu       sync.RWMutex
	doc      *document.Document
	selected []int
	mode     SplitMode
}

// SplitState is a snapshot of a SplitSession.
type SplitState struct {
	File     *document.Summary `json:"file"`
	Mode     SplitMode         `json:"mode"`
	Selected []int             `json:"selected"`
	Disabled bool              `json:"disabled"`
}

// SetDocument replaces the file and clears the selection.
func (s *SplitSession) SetDocument(doc *document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.selected = nil
}

// RemoveDocument drops the file and its selection.
func (s *SplitSession) RemoveDocument() {
	s.SetDocument(nil)
}

// Document returns the current file or ErrNoDocument.
func (s *SplitSession) Document() (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return s.doc, nil
}

// Toggle selects page if it is not selected and deselects it otherwise.
func (s *SplitSession) Toggle(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.modeLocked() == ModeAll {
		return ErrSelectionDisabled
	}
	if page < 1 || page > s.doc.Pages {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, s.doc.Pages)
	}
	if i, found := slices.BinarySearch(s.selected, page); found {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = slices.Insert(s.selected, i, page)
	}
	return nil
}

// SelectAll selects every page.
func (s *SplitSession) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.modeLocked() == ModeAll {
		return ErrSelectionDisabled
	}
	s.selected = s.doc.PageNumbers()
	return nil
}

// ClearSelection deselects every page.
func (s *SplitSession) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modeLocked() == ModeAll {
		return ErrSelectionDisabled
	}
	s.selected = nil
	return nil
}

// Snapshot returns the file, mode and selection as one consistent view.
func (s *SplitSession) Snapshot() (*document.Document, SplitMode, []int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, s.modeLocked(), nil, ErrNoDocument
	}
	return s.doc, s.modeLocked(), slices.Clone(s.selected), nil
}

// Selected returns the selected pages in ascending order.
func (s *SplitSession) Selected() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// SetMode switches between range and all. The selection is kept.
func (s *SplitSession) SetMode(m SplitMode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return nil
}

// Mode returns the current mode; range until set otherwise.
func (s *SplitSession) Mode() SplitMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modeLocked()
}

func (s *SplitSession) modeLocked() SplitMode {
	if s.mode == "" {
		return ModeRange
	}
	return s.mode
}

// State returns a snapshot for display.
func (s *SplitSession) State() SplitState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SplitState{
		Mode:     s.modeLocked(),
		Selected: slices.Clone(s.selected),
	}
	if st.Selected == nil {
		st.Selected = []int{}
	}
	st.Disabled = st.Mode == ModeAll
	if s.doc != nil {
		sum := s.doc.Summary()
		st.File = &sum
	}
	return st
}
