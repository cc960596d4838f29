package novel

import "context"

// Store persists novel records. Implementations must be safe for
// concurrent use; Update replaces pages and finished wholesale, relying
// on the engine's per-novel guard for write ordering.
type Store interface {
	// Get returns the record for id, or ErrNovelNotFound.
	Get(ctx context.Context, id string) (Novel, error)

	// Create inserts a new record, or ErrNovelExists if the id is taken.
	Create(ctx context.Context, n Novel) error

	// Update overwrites the pages and finished flag of an existing
	// record, or ErrNovelNotFound.
	Update(ctx context.Context, id string, pages []string, finished bool) error

	// ListByOwner returns every novel created by the given user.
	ListByOwner(ctx context.Context, owner int64) ([]Novel, error)
}
