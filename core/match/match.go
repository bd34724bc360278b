// Package match decides which highlights fall within a reading session's
// range. It prefers the document-order position index, which turns the
// ambiguous structural comparison into a total integer comparison, and
// degrades to page numbers and then to conservative range containment when
// the index cannot answer.
package match

import (
	"sort"

	"github.com/pagefold/pagefold/core/posindex"
	"github.com/pagefold/pagefold/core/xpoint"
)

// Session carries the positional fields of a reading session the matcher
// reads. The session entity itself is owned by the surrounding application.
type Session struct {
	Range     *xpoint.Range
	StartPage *int
	EndPage   *int
}

// Highlight carries the positional fields of a highlight. Pos is the
// highlight's start position (a point annotation has only that).
type Highlight struct {
	ID   string
	Pos  *xpoint.Position
	Page *int
}

// Result is the outcome of linking one session against a candidate set.
// Matched is ordered (document order when known); Undetermined lists the
// candidates for which no decision path could be evaluated. Undetermined
// highlights are never guessed into Matched.
type Result struct {
	Matched      []Highlight
	Undetermined []Highlight
}

// matched carries the sort keys established while deciding containment.
type matched struct {
	h       Highlight
	pos     int
	hasPos  bool
	page    int
	hasPage bool
}

// Link evaluates every candidate highlight against the session. Decision
// chain per pair, first evaluable wins:
//
//  1. Session range and highlight both resolve via the index: integer
//     containment, total, never ambiguous.
//  2. Both sides carry page numbers: page containment.
//  3. Conservative xpoint range containment, which reports false on
//     structural ambiguity.
//  4. Nothing evaluable: the pair is Undetermined.
//
// The index may be nil (document not walked yet); the chain simply starts
// at 2. Link snapshots nothing and mutates nothing; callers pass the index
// reference they looked up once, so a concurrent rebuild cannot tear it.
func Link(session Session, candidates []Highlight, index *posindex.Index) Result {
	startPos, endPos, haveSessionPos := sessionPositions(session, index)

	var result Result
	var entries []matched
	for _, h := range candidates {
		e := matched{h: h}
		if h.Page != nil {
			e.page = *h.Page
			e.hasPage = true
		}
		if index != nil && h.Pos != nil {
			if pos, err := index.Resolve(h.Pos); err == nil {
				e.pos = pos
				e.hasPos = true
			}
		}

		switch {
		case haveSessionPos && e.hasPos:
			if startPos <= e.pos && e.pos <= endPos {
				entries = append(entries, e)
			}
		case sessionHasPages(session) && e.hasPage:
			if *session.StartPage <= e.page && e.page <= *session.EndPage {
				entries = append(entries, e)
			}
		case session.Range != nil && h.Pos != nil:
			if session.Range.Contains(h.Pos) {
				entries = append(entries, e)
			}
		default:
			result.Undetermined = append(result.Undetermined, h)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
	for _, e := range entries {
		result.Matched = append(result.Matched, e.h)
	}
	return result
}

func sessionPositions(session Session, index *posindex.Index) (start, end int, ok bool) {
	if index == nil || session.Range == nil {
		return 0, 0, false
	}
	start, err := index.Resolve(session.Range.Start)
	if err != nil {
		return 0, 0, false
	}
	end, err = index.Resolve(session.Range.End)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

func sessionHasPages(session Session) bool {
	return session.StartPage != nil && session.EndPage != nil
}

// entryLess orders matched highlights: document-order position when known,
// then page number, then the encoding's textual form. The textual form is a
// determinism tie-break only, not a correctness claim.
func entryLess(a, b matched) bool {
	if a.hasPos != b.hasPos {
		return a.hasPos
	}
	if a.hasPos && a.pos != b.pos {
		return a.pos < b.pos
	}
	if a.hasPage != b.hasPage {
		return a.hasPage
	}
	if a.hasPage && a.page != b.page {
		return a.page < b.page
	}
	return encodingForm(a.h) < encodingForm(b.h)
}

func encodingForm(h Highlight) string {
	if h.Pos == nil {
		return ""
	}
	return h.Pos.String()
}
