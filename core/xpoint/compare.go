package xpoint

// Ordering is the outcome of comparing two positions. The same-name sibling
// counting in xpoint paths makes the order genuinely partial: when two paths
// diverge on differently-named elements there is no way to know how those
// siblings interleave, and the honest answer is Incomparable.
type Ordering int

const (
	// Incomparable means the relative order cannot be determined from the
	// encodings alone. It is a first-class outcome, not an error.
	Incomparable Ordering = iota
	// Less means the first position precedes the second in document order.
	Less
	// Equal means the positions address the same location.
	Equal
	// Greater means the first position follows the second in document order.
	Greater
)

// String returns the ordering name.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "incomparable"
	}
}

// Compare compares two positions in document order. Priority:
//
//  1. Effective fragment index (a missing marker means fragment 1).
//  2. The first path divergence: same element name, ordered by occurrence
//     index; different names, Incomparable.
//  3. A strict path prefix is an ancestor and precedes its descendants.
//  4. Fully equal paths fall through to text node index, then offset.
func Compare(a, b *Position) Ordering {
	if a.Fragment() != b.Fragment() {
		return ordInt(a.Fragment(), b.Fragment())
	}

	n := len(a.steps)
	if len(b.steps) < n {
		n = len(b.steps)
	}
	for i := 0; i < n; i++ {
		if a.steps[i].Name != b.steps[i].Name {
			return Incomparable
		}
		if a.steps[i].Index != b.steps[i].Index {
			return ordInt(a.steps[i].Index, b.steps[i].Index)
		}
	}
	if len(a.steps) != len(b.steps) {
		// The shorter path's node is an ancestor of the longer path's
		// node; a parent precedes its descendants in document order.
		return ordInt(len(a.steps), len(b.steps))
	}

	if a.TextNode() != b.TextNode() {
		return ordInt(a.TextNode(), b.TextNode())
	}
	return ordInt(a.Offset(), b.Offset())
}

func ordInt(a, b int) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}
