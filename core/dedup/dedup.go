// Package dedup computes stable content hashes over annotation fields and
// filters duplicates out of bulk-ingest batches.
package dedup

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/pagefold/pagefold/core/errors"
)

// ContentHash is the lowercase hex form of a 256-bit BLAKE3 digest.
// Equality is byte equality; it is usable directly as a map key.
type ContentHash string

// Hash hashes an ordered sequence of content parts. The caller fixes the
// canonical field order; order matters. Each part is framed as
// "<decimal length>:<bytes>" before hashing so that ("ab","c") and
// ("a","bc") cannot collide. Fails with ErrEmptyContent when the parts
// carry no bytes at all.
func Hash(parts ...string) (ContentHash, error) {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	if total == 0 {
		return "", errors.Wrap(errors.ErrEmptyContent, "nothing to hash")
	}

	h := blake3.New()
	for _, part := range parts {
		h.WriteString(strconv.Itoa(len(part)))
		h.WriteString(":")
		h.WriteString(part)
	}
	sum := h.Sum(nil)
	return ContentHash(hex.EncodeToString(sum)), nil
}

// FromText is the single-field case of Hash.
func FromText(text string) (ContentHash, error) {
	return Hash(text)
}

// Set is a set of known content hashes.
type Set map[ContentHash]struct{}

// NewSet builds a Set from the given hashes.
func NewSet(hashes ...ContentHash) Set {
	s := make(Set, len(hashes))
	for _, h := range hashes {
		s[h] = struct{}{}
	}
	return s
}

// Contains reports whether h is in the set.
func (s Set) Contains(h ContentHash) bool {
	_, ok := s[h]
	return ok
}

// Add inserts h into the set.
func (s Set) Add(h ContentHash) {
	s[h] = struct{}{}
}

// Candidate pairs an item with its precomputed content hash.
type Candidate[T any] struct {
	Item T
	Hash ContentHash
}

// Partition splits candidates into unique and duplicate items, preserving
// input order. A candidate is a duplicate if its hash is in existing or was
// already seen earlier in the same batch; the first occurrence within a
// batch wins. The existing set is not modified.
func Partition[T any](candidates []Candidate[T], existing Set) (unique, duplicates []T) {
	seen := make(Set, len(candidates))
	for _, c := range candidates {
		if existing.Contains(c.Hash) || seen.Contains(c.Hash) {
			duplicates = append(duplicates, c.Item)
			continue
		}
		seen.Add(c.Hash)
		unique = append(unique, c.Item)
	}
	return unique, duplicates
}
