package app

import (
	"context"
	"fmt"
	"time"

	"plumeai/internal/store"
	"plumeai/pkg/domain"
)

// DefaultListLimit bounds draft listings when the caller gives no limit.
const DefaultListLimit = 20

// Save statuses returned by SaveDraft.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
)

// Config holds the collaborators of the core application.
type Config struct {
	// Store is the persistence accessor; nil means unconfigured and every
	// draft operation degrades per its own contract.
	Store store.Store
	// DatabaseURLSet / DatabaseNameSet report whether the two store
	// configuration values were present. Diagnostics exposes presence
	// only, never the values.
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

// App is the core application service: draft persistence, diagnostics, and
// chat reply scripts. It holds no per-request state.
type App struct {
	store     store.Store
	dbURLSet  bool
	dbNameSet bool
}

// New constructs the application.
func New(cfg Config) *App {
	return &App{
		store:     cfg.Store,
		dbURLSet:  cfg.DatabaseURLSet,
		dbNameSet: cfg.DatabaseNameSet,
	}
}

// SaveResult reports the outcome of SaveDraft.
type SaveResult struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// SaveDraft upserts a draft by title: an existing document with the same
// title is overwritten in place, otherwise a new one is inserted. UpdatedAt
// is stamped on every save. The find-then-write sequence is not atomic, so
// two concurrent first saves of the same title can both insert; the demo
// keeps that behavior rather than adding a unique index.
func (a *App) SaveDraft(ctx context.Context, draft domain.EbookDraft) (SaveResult, error) {
	if a.store == nil {
		return SaveResult{}, ErrStoreNotConfigured
	}
	draft.UpdatedAt = time.Now().UTC()

	existing, found, err := a.store.FindDraftByTitle(ctx, draft.Title)
	if err != nil {
		return SaveResult{}, fmt.Errorf("find draft by title: %w", err)
	}
	if found {
		if err := a.store.UpdateDraft(ctx, existing.ID, draft); err != nil {
			return SaveResult{}, fmt.Errorf("update draft: %w", err)
		}
		return SaveResult{Status: StatusUpdated, ID: existing.ID}, nil
	}
	id, err := a.store.InsertDraft(ctx, draft)
	if err != nil {
		return SaveResult{}, fmt.Errorf("insert draft: %w", err)
	}
	return SaveResult{Status: StatusCreated, ID: id}, nil
}

// ListDrafts returns up to limit drafts, most recently updated first. A
// missing store yields an empty list, not an error; non-positive limits fall
// back to DefaultListLimit.
func (a *App) ListDrafts(ctx context.Context, limit int) ([]domain.EbookDraft, error) {
	if a.store == nil {
		return []domain.EbookDraft{}, nil
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	drafts, err := a.store.ListDrafts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	if drafts == nil {
		drafts = []domain.EbookDraft{}
	}
	return drafts, nil
}
