package workspace

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/novvoo/go-pdfmaster/internal/testpdf"
	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func load(t *testing.T, name string, pages int) *document.Document {
	t.Helper()
	doc, err := document.Load(context.Background(), name, bytes.NewReader(testpdf.Build(pages)))
	require.NoError(t, err)
	return doc
}

func names(q *MergeQueue) string {
	var out []string
	for _, f := range q.Files() {
		out = append(out, f.Name)
	}
	return strings.Join(out, "")
}

func TestMergeQueueMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "BCAD"},
		{3, 0, "DABC"},
		{1, 3, "ACDB"},
		{2, 1, "ACBD"},
		{1, 1, "ABCD"},
	}
	docs := []*document.Document{load(t, "A", 1), load(t, "B", 1), load(t, "C", 1), load(t, "D", 1)}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_to_%d", tt.from, tt.to), func(t *testing.T) {
			q := &MergeQueue{}
			q.Add(docs...)
			require.NoError(t, q.Move(tt.from, tt.to))
			assert.Equal(t, tt.want, names(q))
		})
	}
}

func TestMergeQueueMoveOutOfRange(t *testing.T) {
	q := &MergeQueue{}
	q.Add(load(t, "A", 1), load(t, "B", 1))
	for _, mv := range [][2]int{{-1, 0}, {0, 2}, {2, 0}, {0, -1}} {
		assert.ErrorIs(t, q.Move(mv[0], mv[1]), ErrIndexOutOfRange)
	}
	assert.Equal(t, "AB", names(q))
}

func TestMergeQueueRemove(t *testing.T) {
	q := &MergeQueue{}
	a, b, c := load(t, "A", 1), load(t, "B", 2), load(t, "C", 3)
	q.Add(a, b, c)
	assert.Equal(t, 6, q.Pages())

	require.NoError(t, q.Remove(b.ID))
	assert.Equal(t, "AC", names(q))
	assert.ErrorIs(t, q.Remove(b.ID), ErrNotFound)

	q.Clear()
	assert.Zero(t, q.Len())
}

func TestMergeQueueSameFileTwice(t *testing.T) {
	q := &MergeQueue{}
	q.Add(load(t, "A", 1), load(t, "A", 1))
	files := q.Files()
	require.Len(t, files, 2)
	assert.NotEqual(t, files[0].ID, files[1].ID)

	require.NoError(t, q.Remove(files[0].ID))
	assert.Equal(t, 1, q.Len())
}

func TestMergeQueueReady(t *testing.T) {
	q := &MergeQueue{}
	assert.ErrorIs(t, q.Ready(), pageops.ErrTooFewFiles)
	q.Add(load(t, "A", 1))
	assert.ErrorIs(t, q.Ready(), pageops.ErrTooFewFiles)
	q.Add(load(t, "B", 1))
	assert.NoError(t, q.Ready())

	sums := q.Summaries()
	require.Len(t, sums, 2)
	assert.Equal(t, "A", sums[0].Name)
}

func TestSplitToggle(t *testing.T) {
	s := &SplitSession{}
	assert.ErrorIs(t, s.Toggle(1), ErrNoDocument)

	s.SetDocument(load(t, "doc.pdf", 5))
	for _, p := range []int{4, 2, 5, 2} {
		require.NoError(t, s.Toggle(p))
	}
	assert.Equal(t, []int{4, 5}, s.Selected())

	assert.ErrorIs(t, s.Toggle(0), ErrPageOutOfRange)
	assert.ErrorIs(t, s.Toggle(6), ErrPageOutOfRange)
}

func TestSplitSelectAllAndClear(t *testing.T) {
	s := &SplitSession{}
	assert.ErrorIs(t, s.SelectAll(), ErrNoDocument)

	s.SetDocument(load(t, "doc.pdf", 3))
	require.NoError(t, s.SelectAll())
	assert.Equal(t, []int{1, 2, 3}, s.Selected())

	require.NoError(t, s.ClearSelection())
	assert.Empty(t, s.Selected())

	require.NoError(t, s.Toggle(2))
	require.NoError(t, s.SetMode(ModeAll))
	assert.ErrorIs(t, s.SelectAll(), ErrSelectionDisabled)
	assert.ErrorIs(t, s.ClearSelection(), ErrSelectionDisabled)
	assert.Equal(t, []int{2}, s.Selected())
}

func TestSplitSnapshot(t *testing.T) {
	s := &SplitSession{}
	_, mode, _, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Equal(t, ModeRange, mode)

	small, large := load(t, "small.pdf", 2), load(t, "large.pdf", 6)
	s.SetDocument(large)
	require.NoError(t, s.Toggle(5))

	doc, mode, selected, err := s.Snapshot()
	require.NoError(t, err)
	assert.Same(t, large, doc)
	assert.Equal(t, ModeRange, mode)
	assert.Equal(t, []int{5}, selected)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			next := small
			if i%2 == 0 {
				next = large
			}
			s.SetDocument(next)
			_ = s.SelectAll()
		}
	}()
	for i := 0; i < 200; i++ {
		doc, _, selected, err := s.Snapshot()
		require.NoError(t, err)
		for _, p := range selected {
			if p > doc.Pages {
				t.Fatalf("page %d selected in %d-page %s", p, doc.Pages, doc.Name)
			}
		}
	}
	wg.Wait()
}

func TestSplitModeDisablesSelection(t *testing.T) {
	s := &SplitSession{}
	s.SetDocument(load(t, "doc.pdf", 3))
	assert.Equal(t, ModeRange, s.Mode())
	require.NoError(t, s.Toggle(2))

	require.NoError(t, s.SetMode(ModeAll))
	assert.ErrorIs(t, s.Toggle(1), ErrSelectionDisabled)
	st := s.State()
	assert.True(t, st.Disabled)
	assert.Equal(t, []int{2}, st.Selected)

	assert.ErrorIs(t, s.SetMode("pages"), ErrInvalid)
	assert.Equal(t, ModeAll, s.Mode())
}

func TestSplitReplaceDocumentClearsSelection(t *testing.T) {
	s := &SplitSession{}
	s.SetDocument(load(t, "one.pdf", 3))
	require.NoError(t, s.Toggle(3))

	s.SetDocument(load(t, "two.pdf", 2))
	assert.Empty(t, s.Selected())
	st := s.State()
	require.NotNil(t, st.File)
	assert.Equal(t, "two.pdf", st.File.Name)

	s.RemoveDocument()
	_, err := s.Document()
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Nil(t, s.State().File)
	assert.NotNil(t, s.State().Selected)
}

func TestParseView(t *testing.T) {
	for _, v := range []string{"home", "merge", "split"} {
		got, err := ParseView(v)
		require.NoError(t, err)
		assert.Equal(t, View(v), got)
	}
	_, err := ParseView("settings")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestStore(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(time.Minute, WithClock(func() time.Time { return now }))

	a := st.Create()
	b := st.Create()
	assert.Equal(t, ViewHome, a.View())
	assert.Equal(t, 2, st.Len())

	now = now.Add(45 * time.Second)
	_, err := st.Get(a.ID)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, st.Sweep(now))

	_, err = st.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := st.Get(a.ID)
	require.NoError(t, err)
	got.SetView(ViewSplit)
	assert.Equal(t, ViewSplit, a.View())

	require.NoError(t, st.Delete(a.ID))
	assert.ErrorIs(t, st.Delete(a.ID), ErrSessionNotFound)
}

func TestStoreNoTTL(t *testing.T) {
	st := NewStore(0)
	st.Create()
	assert.Zero(t, st.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, st.Len())
}

func TestStoreRunStops(t *testing.T) {
	st := NewStore(time.Millisecond)
	st.Create()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
