package store

import (
	"context"

	"plumeai/pkg/domain"
)

// DraftCollection is the collection holding ebook drafts.
const DraftCollection = "ebook"

// Store defines persistence operations for ebook drafts. Implementations
// back onto a document store; a nil Store means persistence is not
// configured and callers degrade accordingly.
type Store interface {
	// FindDraftByTitle returns the draft with an exact title match.
	// The second result reports whether a document was found.
	FindDraftByTitle(ctx context.Context, title string) (domain.EbookDraft, bool, error)
	// InsertDraft stores a new draft and returns its assigned id.
	InsertDraft(ctx context.Context, draft domain.EbookDraft) (string, error)
	// UpdateDraft overwrites the fields of the draft with the given id.
	UpdateDraft(ctx context.Context, id string, draft domain.EbookDraft) error
	// ListDrafts returns up to limit drafts, most recently updated first.
	ListDrafts(ctx context.Context, limit int) ([]domain.EbookDraft, error)

	// CollectionNames lists up to max collection names, for diagnostics.
	CollectionNames(ctx context.Context, max int) ([]string, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
