// Package ingest turns raw uploaded annotations into parsed, deduplicated
// records. Failures are per item: one malformed or degenerate annotation
// never aborts the rest of the batch.
package ingest

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/pagefold/pagefold/core/dedup"
	"github.com/pagefold/pagefold/core/xpoint"
)

// Kind classifies an annotation.
type Kind string

const (
	// KindHighlight is a highlighted passage.
	KindHighlight Kind = "highlight"
	// KindSession is a reading session with a start/end range.
	KindSession Kind = "session"
	// KindChapter is a chapter boundary marker.
	KindChapter Kind = "chapter"
)

// RawAnnotation is one uploaded annotation as the e-reader export carries
// it: positional fields as raw xpoint strings.
type RawAnnotation struct {
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Page      *int   `json:"page,omitempty"`
	StartPage *int   `json:"start_page,omitempty"`
	EndPage   *int   `json:"end_page,omitempty"`
}

// Annotation is an accepted, parsed annotation ready for persistence.
type Annotation struct {
	ID        string
	Kind      Kind
	Start     *xpoint.Position // nil when the annotation carries no position
	End       *xpoint.Position // sessions only
	Page      *int
	StartPage *int
	EndPage   *int
	Text      string
	Hash      dedup.ContentHash
}

// Rejection pairs a rejected annotation with the reason.
type Rejection struct {
	Raw RawAnnotation
	Err error
}

// Report lists the per-item outcomes of one batch.
type Report struct {
	Accepted   []Annotation
	Duplicates []RawAnnotation
	Rejected   []Rejection
}

// ProcessBatch validates, parses, hashes, and deduplicates a batch in input
// order. existing holds the content hashes already persisted for the book;
// it is not modified. Duplicates within the batch keep the first occurrence.
func ProcessBatch(batch []RawAnnotation, existing dedup.Set) Report {
	var report Report
	var candidates []dedup.Candidate[Annotation]

	for _, raw := range batch {
		ann, err := parseOne(raw)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Raw: raw, Err: err})
			continue
		}
		candidates = append(candidates, dedup.Candidate[Annotation]{Item: ann, Hash: ann.Hash})
	}

	unique, duplicates := dedup.Partition(candidates, existing)
	for _, ann := range unique {
		ann.ID = uuid.NewString()
		report.Accepted = append(report.Accepted, ann)
	}
	for _, ann := range duplicates {
		report.Duplicates = append(report.Duplicates, rawOf(ann))
	}
	return report
}

func parseOne(raw RawAnnotation) (Annotation, error) {
	kind := Kind(raw.Kind)
	switch kind {
	case KindHighlight, KindSession, KindChapter:
	default:
		return Annotation{}, fmt.Errorf("unknown annotation kind %q", raw.Kind)
	}

	ann := Annotation{
		Kind:      kind,
		Text:      raw.Text,
		Page:      raw.Page,
		StartPage: raw.StartPage,
		EndPage:   raw.EndPage,
	}

	if raw.Start != "" {
		start, err := xpoint.Parse(raw.Start)
		if err != nil {
			return Annotation{}, err
		}
		ann.Start = start
	}
	if raw.End != "" {
		end, err := xpoint.Parse(raw.End)
		if err != nil {
			return Annotation{}, err
		}
		ann.End = end
	}
	if ann.Start != nil && ann.End != nil {
		if _, err := xpoint.NewRange(ann.Start, ann.End); err != nil {
			return Annotation{}, err
		}
	}

	if kind == KindSession {
		hasRange := ann.Start != nil && ann.End != nil
		hasPages := raw.StartPage != nil && raw.EndPage != nil
		if !hasRange && !hasPages {
			return Annotation{}, fmt.Errorf("session needs a position range or page range")
		}
	}

	hash, err := dedup.Hash(contentParts(raw)...)
	if err != nil {
		return Annotation{}, err
	}
	ann.Hash = hash
	return ann, nil
}

// contentParts fixes the canonical field order hashed for deduplication:
// text, start, end, then the page fields. The dedup layer length-prefixes
// each part, so empty fields are unambiguous.
func contentParts(raw RawAnnotation) []string {
	return []string{
		raw.Text,
		raw.Start,
		raw.End,
		pageString(raw.Page),
		pageString(raw.StartPage),
		pageString(raw.EndPage),
	}
}

func pageString(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func rawOf(ann Annotation) RawAnnotation {
	raw := RawAnnotation{
		Kind:      string(ann.Kind),
		Text:      ann.Text,
		Page:      ann.Page,
		StartPage: ann.StartPage,
		EndPage:   ann.EndPage,
	}
	if ann.Start != nil {
		raw.Start = ann.Start.String()
	}
	if ann.End != nil {
		raw.End = ann.End.String()
	}
	return raw
}
