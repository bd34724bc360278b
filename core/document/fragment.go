// Package document models parsed EPUB content fragments and enumerates
// their elements in document order.
package document

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"

	"github.com/pagefold/pagefold/core/xpoint"
)

// Fragment is one ordered unit of document content: a single parsed spine
// item. Its root element is not itself addressable; xpoint paths start at
// the root's children, which is how the annotation tool addresses content
// (the first step of an in-fragment path is typically "body").
type Fragment struct {
	name string
	root *xmlquery.Node
}

// Parse parses an XHTML/XML fragment. name identifies the source (for
// example the spine item href) and appears in errors and logs.
func Parse(name string, data []byte) (*Fragment, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing fragment %s: %w", name, err)
	}

	var root *xmlquery.Node
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			root = child
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("fragment %s has no root element", name)
	}

	return &Fragment{name: name, root: root}, nil
}

// Name returns the fragment's source identifier.
func (f *Fragment) Name() string {
	return f.name
}

// Root returns the fragment's root element node.
func (f *Fragment) Root() *xmlquery.Node {
	return f.root
}

// VisitFunc is called once per element in document order. steps is the
// xpoint path from the fragment root (exclusive) to the element, with
// same-name sibling indices. The slice is only valid for the duration of
// the call. Returning an error stops the walk.
type VisitFunc func(steps []xpoint.Step, node *xmlquery.Node) error

// Walk enumerates the fragment's elements in pre-order document order,
// root to leaves, in child order. Sibling indices count only same-named
// siblings, reproducing the annotation tool's addressing scheme.
func (f *Fragment) Walk(visit VisitFunc) error {
	return walk(f.root, nil, visit)
}

func walk(parent *xmlquery.Node, prefix []xpoint.Step, visit VisitFunc) error {
	counts := make(map[string]int)
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		counts[child.Data]++
		steps := append(prefix, xpoint.Step{Name: child.Data, Index: counts[child.Data]})
		if err := visit(steps, child); err != nil {
			return err
		}
		if err := walk(child, steps, visit); err != nil {
			return err
		}
	}
	return nil
}
