package store

import (
	"context"
	"sort"
	"sync"

	"plumeai/internal/util"
	"plumeai/pkg/domain"
)

// MemoryStore keeps drafts in-process. Used by tests and local runs without
// a database.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.EbookDraft // key: draft ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]domain.EbookDraft)}
}

// FindDraftByTitle returns the draft with an exact title match.
func (m *MemoryStore) FindDraftByTitle(_ context.Context, title string) (domain.EbookDraft, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drafts {
		if d.Title == title {
			return d, true, nil
		}
	}
	return domain.EbookDraft{}, false, nil
}

// InsertDraft stores a new draft under a fresh id.
func (m *MemoryStore) InsertDraft(_ context.Context, draft domain.EbookDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := util.NewID()
	draft.ID = id
	m.drafts[id] = draft
	return id, nil
}

// UpdateDraft overwrites the draft with the given id. Unknown ids are a
// no-op, matching the $set-by-id semantics of the document store.
func (m *MemoryStore) UpdateDraft(_ context.Context, id string, draft domain.EbookDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return nil
	}
	draft.ID = id
	m.drafts[id] = draft
	return nil
}

// ListDrafts returns up to limit drafts, most recently updated first.
func (m *MemoryStore) ListDrafts(_ context.Context, limit int) ([]domain.EbookDraft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.EbookDraft, 0, len(m.drafts))
	for _, d := range m.drafts {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// CollectionNames reports the single draft collection once populated.
func (m *MemoryStore) CollectionNames(_ context.Context, max int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.drafts) == 0 || max == 0 {
		return []string{}, nil
	}
	return []string{DraftCollection}, nil
}

// Ping always succeeds for the in-process store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
