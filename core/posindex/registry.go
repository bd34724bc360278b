package posindex

import (
	"context"
	"sync"

	"github.com/pagefold/pagefold/core/document"
)

// Registry holds the installed index per book. Rebuilds are serialized per
// book and install atomically: a new index replaces the old one only after
// the full walk succeeds, so readers always see a complete index or none.
type Registry struct {
	mu      sync.RWMutex
	indices map[string]*Index

	buildMu sync.Mutex
	builds  map[string]*sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		indices: make(map[string]*Index),
		builds:  make(map[string]*sync.Mutex),
	}
}

// Lookup returns the currently installed index for a book, if any. The
// returned index is an immutable snapshot; callers keep using it even if a
// rebuild installs a replacement mid-flight.
func (r *Registry) Lookup(bookID string) (*Index, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ix, ok := r.indices[bookID]
	return ix, ok
}

// Rebuild builds a fresh index for the book and installs it on success.
// Builds for the same book are serialized; a failed or cancelled build
// leaves the previously installed index untouched.
func (r *Registry) Rebuild(ctx context.Context, bookID string, fragments []*document.Fragment) (*Index, error) {
	lock := r.buildLock(bookID)
	lock.Lock()
	defer lock.Unlock()

	ix, err := Build(ctx, bookID, fragments)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.indices[bookID] = ix
	r.mu.Unlock()
	return ix, nil
}

// Remove drops the installed index for a book.
func (r *Registry) Remove(bookID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.indices, bookID)
}

// Books returns the IDs of all books with an installed index.
func (r *Registry) Books() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.indices))
	for id := range r.indices {
		out = append(out, id)
	}
	return out
}

func (r *Registry) buildLock(bookID string) *sync.Mutex {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	lock, ok := r.builds[bookID]
	if !ok {
		lock = &sync.Mutex{}
		r.builds[bookID] = lock
	}
	return lock
}
