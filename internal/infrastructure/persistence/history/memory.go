package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// MemoryStore keeps sessions for the lifetime of the process
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[review.SessionID]*review.Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[review.SessionID]*review.Session)}
}

// SaveSession stores a copy of s
func (m *MemoryStore) SaveSession(ctx context.Context, s *review.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return fmt.Errorf("history store is closed")
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

// FindSession returns a copy of the stored session
func (m *MemoryStore) FindSession(ctx context.Context, id review.SessionID) (*review.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", output.ErrSessionNotFound, id)
	}
	return cloneSession(s), nil
}

// ListSessions returns up to limit sessions, newest first
func (m *MemoryStore) ListSessions(ctx context.Context, limit int) ([]*review.Session, error) {
	m.mu.RLock()
	list := make([]*review.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, cloneSession(s))
	}
	m.mu.RUnlock()

	sortNewestFirst(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Close drops every session
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	return nil
}

func sortNewestFirst(list []*review.Session) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].StartedAt.After(list[j].StartedAt)
		}
		return list[i].ID > list[j].ID
	})
}

func cloneSession(s *review.Session) *review.Session {
	cp := *s
	cp.Profiles = append([]string(nil), s.Profiles...)
	cp.Drafts = make([]review.DraftRecord, len(s.Drafts))
	for i, d := range s.Drafts {
		cp.Drafts[i] = d
		if d.Verdict != nil {
			v := *d.Verdict
			cp.Drafts[i].Verdict = &v
		}
	}
	if s.Outcome != nil {
		o := *s.Outcome
		cp.Outcome = &o
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
