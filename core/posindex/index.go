// Package posindex builds and queries per-book document-order position
// indices. The index resolves the structural ambiguity of xpoint comparison
// by walking the actual document tree and assigning every element one
// strictly increasing integer, so containment checks against it are total.
package posindex

import (
	"context"
	"fmt"

	"github.com/antchfx/xmlquery"

	"github.com/pagefold/pagefold/core/document"
	"github.com/pagefold/pagefold/core/errors"
	"github.com/pagefold/pagefold/core/xpoint"
)

// Index maps element-granularity xpoint keys to document-order positions
// for one book. An Index is immutable once built; concurrent reads need no
// coordination.
type Index struct {
	bookID    string
	positions map[string]int
}

// Build walks the fragments in their given order (that order is the
// authoritative 1-based fragment numbering) and records a strictly
// increasing position for every element. Text-node and offset-level
// addresses resolve to their containing element's position; the index is
// element-granular by design.
//
// The walk honors ctx: a cancelled build returns the context error and no
// index. Build never installs anything itself; see Registry.
func Build(ctx context.Context, bookID string, fragments []*document.Fragment) (*Index, error) {
	ix := &Index{
		bookID:    bookID,
		positions: make(map[string]int),
	}

	counter := 0
	for i, frag := range fragments {
		fragmentIndex := i + 1
		if err := ctx.Err(); err != nil {
			return nil, errors.NewBuild(bookID, fragmentIndex, err)
		}
		if frag == nil {
			return nil, errors.NewBuild(bookID, fragmentIndex, fmt.Errorf("nil fragment"))
		}
		err := frag.Walk(func(steps []xpoint.Step, _ *xmlquery.Node) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			counter++
			ix.positions[xpoint.ElementKey(fragmentIndex, steps)] = counter
			return nil
		})
		if err != nil {
			return nil, errors.NewBuild(bookID, fragmentIndex, err)
		}
	}

	return ix, nil
}

// BookID returns the book this index was built for.
func (ix *Index) BookID() string {
	return ix.bookID
}

// Len returns the number of indexed elements.
func (ix *Index) Len() int {
	return len(ix.positions)
}

// Resolve returns the document-order position of the element addressed by
// p. It fails with an error wrapping ErrNotIndexed when the element is not
// in the index (stale annotation against a reprocessed document, or an
// encoding that parsed but addresses nothing). Callers treat that as
// "position unknown, fall back", not as a hard failure.
func (ix *Index) Resolve(p *xpoint.Position) (int, error) {
	if p == nil {
		return 0, errors.NewNotIndexed("", ix.bookID)
	}
	key := p.ElementKey()
	pos, ok := ix.positions[key]
	if !ok {
		return 0, errors.NewNotIndexed(key, ix.bookID)
	}
	return pos, nil
}
