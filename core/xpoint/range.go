package xpoint

import (
	"github.com/pagefold/pagefold/core/errors"
)

// Range is a closed positional range. Start and End may be Incomparable to
// each other (the ambiguity cannot be resolved without the document); only a
// provably inverted pair is rejected at construction.
type Range struct {
	Start *Position
	End   *Position
}

// NewRange builds a Range, failing when the order of start and end is
// well-defined and violated.
func NewRange(start, end *Position) (Range, error) {
	if start == nil || end == nil {
		return Range{}, errors.Wrap(errors.ErrInvalidRange, "range requires both start and end")
	}
	if Compare(start, end) == Greater {
		return Range{}, errors.Wrapf(errors.ErrInvalidRange, "start %s is after end %s", start, end)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange parses two raw xpoint strings into a Range.
func ParseRange(rawStart, rawEnd string) (Range, error) {
	start, err := Parse(rawStart)
	if err != nil {
		return Range{}, err
	}
	end, err := Parse(rawEnd)
	if err != nil {
		return Range{}, err
	}
	return NewRange(start, end)
}

// Contains reports whether p lies within the closed range. It returns true
// only when both comparisons are resolvable and non-adverse; Incomparable
// yields false rather than a guess. Callers must read false as "unknown or
// outside" and prefer index-based containment when an index is available.
func (r Range) Contains(p *Position) bool {
	if p == nil {
		return false
	}
	c := Compare(r.Start, p)
	if c != Less && c != Equal {
		return false
	}
	c = Compare(p, r.End)
	return c == Less || c == Equal
}

// String serializes the range as "start..end".
func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}
