package memory

import (
	"context"
	"sync"

	"github.com/nennneko5787/novelist-ai/internal/model/novel"
)

// Store keeps novels in process memory. It backs tests and credential-free
// development runs; records do not survive a restart.
type Store struct {
	mu     sync.RWMutex
	novels map[string]novel.Novel
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{novels: make(map[string]novel.Novel)}
}

// Get returns the record for id, or novel.ErrNovelNotFound.
func (s *Store) Get(_ context.Context, id string) (novel.Novel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.novels[id]
	if !ok {
		return novel.Novel{}, novel.ErrNovelNotFound
	}
	return copyNovel(n), nil
}

// Create inserts a new record, or novel.ErrNovelExists on an id collision.
func (s *Store) Create(_ context.Context, n novel.Novel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.novels[n.ID]; ok {
		return novel.ErrNovelExists
	}
	s.novels[n.ID] = copyNovel(n)
	return nil
}

// Update overwrites the pages and finished flag of an existing record.
func (s *Store) Update(_ context.Context, id string, pages []string, finished bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.novels[id]
	if !ok {
		return novel.ErrNovelNotFound
	}

	n.Pages = append([]string(nil), pages...)
	n.Finished = finished
	s.novels[id] = n
	return nil
}

// ListByOwner returns every novel created by the given user.
func (s *Store) ListByOwner(_ context.Context, owner int64) ([]novel.Novel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var novels []novel.Novel
	for _, n := range s.novels {
		if n.Owner == owner {
			novels = append(novels, copyNovel(n))
		}
	}
	return novels, nil
}

// copyNovel detaches the pages slice so callers cannot alias stored state.
func copyNovel(n novel.Novel) novel.Novel {
	n.Pages = append([]string(nil), n.Pages...)
	return n
}
