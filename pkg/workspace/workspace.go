// Package workspace keeps the per-user state of the merge and split flows:
// which view is open, the ordered merge list, and the file and page selection
// being split. Sessions expire after a period of inactivity.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("workspace: not found")
	ErrSessionNotFound   = fmt.Errorf("%w: session", ErrNotFound)
	ErrIndexOutOfRange   = errors.New("workspace: index out of range")
	ErrPageOutOfRange    = errors.New("workspace: page out of range")
	ErrNoDocument        = errors.New("workspace: no file loaded")
	ErrSelectionDisabled = errors.New("workspace: page selection is disabled in all mode")
	ErrInvalid           = errors.New("workspace: invalid value")
)

// View is the page flow a session is looking at.
type View string

const (
	ViewHome  View = "home"
	ViewMerge View = "merge"
	ViewSplit View = "split"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewHome, ViewMerge, ViewSplit:
		return v, nil
	}
	return "", fmt.Errorf("%w: view %q", ErrInvalid, s)
}

// Session is one user's workspace.
type Session struct {
	ID    string
	Merge *MergeQueue
	Split *SplitSession

	mu       sync.Mutex
	view     View
	lastSeen time.Time
}

// View returns the open view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the open view.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store holds sessions in memory.
type Store struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithStoreLogger sets the store logger.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store whose sessions expire after ttl without access.
// A ttl of zero keeps sessions forever.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		ttl:      ttl,
		now:      time.Now,
		logger:   zap.NewNop(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session on the home view.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		Merge:    &MergeQueue{},
		Split:    &SplitSession{},
		view:     ViewHome,
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session and marks it as used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Debug("expired sessions", zap.Int("removed", n), zap.Int("live", s.Len()))
			}
		}
	}
}
