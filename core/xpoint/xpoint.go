// Package xpoint parses, serializes, and compares the compact positional
// encodings e-reader software records against EPUB documents.
//
// An xpoint addresses a location inside a book as an optional fragment
// marker, a path of element steps with 1-based same-name sibling indices, an
// optional text-node selector, and an optional character offset:
//
//	/body/DocFragment[14]/body/div/p[88]/text()[2].13
//
// The path only counts siblings with the same element name, so two xpoints
// whose paths diverge on differently-named elements carry no information
// about their relative document order. Compare models that honestly with the
// Incomparable outcome instead of guessing.
package xpoint

import (
	"fmt"
	"strings"
)

// Step is one path segment: an element name and its 1-based occurrence index
// among same-named siblings under its parent.
type Step struct {
	Name  string
	Index int

	// explicit records whether the index was written out in the source
	// text, so serialization is lossless. Steps built programmatically
	// (for example by the document walker) leave it false.
	explicit bool
}

// Position is a parsed, immutable xpoint.
type Position struct {
	fragment  int // 0 when no fragment marker was present
	steps     []Step
	hasText   bool
	textIndex int // 0 when the selector carried no explicit index
	offset    int
	hasOffset bool
}

// Fragment returns the effective 1-based fragment index. A position without
// a fragment marker addresses fragment 1.
func (p *Position) Fragment() int {
	if p.fragment == 0 {
		return 1
	}
	return p.fragment
}

// HasFragmentMarker reports whether the source text carried an explicit
// /body/DocFragment[n] marker.
func (p *Position) HasFragmentMarker() bool {
	return p.fragment != 0
}

// Steps returns a copy of the element path.
func (p *Position) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// TextNode returns the effective 1-based text node index (default 1).
func (p *Position) TextNode() int {
	if p.textIndex == 0 {
		return 1
	}
	return p.textIndex
}

// Offset returns the character offset within the text node (default 0).
func (p *Position) Offset() int {
	return p.offset
}

// String serializes the position back to its textual form. For any position
// produced by Parse, the result is byte-identical to the accepted input.
func (p *Position) String() string {
	var sb strings.Builder
	if p.fragment != 0 {
		fmt.Fprintf(&sb, "/body/DocFragment[%d]", p.fragment)
	}
	for _, s := range p.steps {
		sb.WriteByte('/')
		sb.WriteString(s.Name)
		if s.explicit {
			fmt.Fprintf(&sb, "[%d]", s.Index)
		}
	}
	if p.hasText {
		sb.WriteString("/text()")
		if p.textIndex != 0 {
			fmt.Fprintf(&sb, "[%d]", p.textIndex)
		}
	}
	if p.hasOffset {
		fmt.Fprintf(&sb, ".%d", p.offset)
	}
	return sb.String()
}

// ElementKey returns the canonical element-granularity form of the position:
// effective fragment plus the path with all indices explicit, text selector
// and offset dropped. Two xpoints addressing text inside the same element
// share an ElementKey. The position index is keyed on this form.
func (p *Position) ElementKey() string {
	return ElementKey(p.Fragment(), p.steps)
}

// ElementKey builds the canonical element key for a fragment index and path.
func ElementKey(fragment int, steps []Step) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:", fragment)
	for _, s := range steps {
		idx := s.Index
		if idx == 0 {
			idx = 1
		}
		fmt.Fprintf(&sb, "/%s[%d]", s.Name, idx)
	}
	return sb.String()
}
