package workspace

import (
	"fmt"
	"sync"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
)

// MergeQueue is the ordered list of files waiting to be merged.
type MergeQueue struct {
	mu    sync.RWMutex
	files []*document.Document
}

// Add appends docs in the given order.
func (q *MergeQueue) Add(docs ...*document.Document) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.files = append(q.files, docs...)
}

// Remove drops the file with the given ID.
func (q *MergeQueue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, f := range q.files {
		if f.ID == id {
			q.files = append(q.files[:i], q.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: file %s", ErrNotFound, id)
}

// Clear empties the queue.
func (q *MergeQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.files = nil
}

// Move takes the file at index from out of the list and re-inserts it so that
// it ends up at index to. Files in between shift by one.
func (q *MergeQueue) Move(from, to int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.files)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d in list of %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	item := q.files[from]
	rest := append(q.files[:from:from], q.files[from+1:]...)
	q.files = append(rest[:to:to], append([]*document.Document{item}, rest[to:]...)...)
	return nil
}

// Files returns the queued files in merge order.
func (q *MergeQueue) Files() []*document.Document {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*document.Document, len(q.files))
	copy(out, q.files)
	return out
}

// Len returns the number of queued files.
func (q *MergeQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.files)
}

// Pages returns the total page count of the queue.
func (q *MergeQueue) Pages() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	total := 0
	for _, f := range q.files {
		total += f.Pages
	}
	return total
}

// Ready reports whether the queue holds enough files to merge.
func (q *MergeQueue) Ready() error {
	if q.Len() < pageops.MinMergeFiles {
		return pageops.ErrTooFewFiles
	}
	return nil
}

// Summaries returns the JSON view of the queue in order.
func (q *MergeQueue) Summaries() []document.Summary {
	files := q.Files()
	out := make([]document.Summary, len(files))
	for i, f := range files {
		out[i] = f.Summary()
	}
	return out
}
