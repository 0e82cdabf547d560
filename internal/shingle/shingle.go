// Package shingle turns text into overlapping character windows and hashes them.
//
// Lengths are counted in characters (runes), not bytes, so multi-byte text is
// windowed the same way as ASCII. Each window is hashed with xxhash64 over its
// UTF-8 bytes, which is stable across calls and process runs.
package shingle

import (
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
)

// Hash returns the shingle hash of a single window.
func Hash(window string) uint64 {
	return xxhash.Sum64String(window)
}

// Each calls fn with the hash of every window text[i:i+size], i in [0, L-size],
// in document order. Duplicates are reported as many times as they occur.
func Each(text string, size int, fn func(uint64)) error {
	if size <= 0 {
		return errors.NewConfigError("shingle_size", "must be > 0")
	}

	length := utf8.RuneCountInString(text)
	if length < size {
		return errors.NewDocumentTooShortError(errors.QueryDocID, length, size, errors.ReasonShingle)
	}

	// ASCII fast path: byte offsets are rune offsets.
	if length == len(text) {
		for i := 0; i+size <= len(text); i++ {
			fn(Hash(text[i : i+size]))
		}
		return nil
	}

	starts := make([]int, 0, length+1)
	for i := range text {
		starts = append(starts, i)
	}
	starts = append(starts, len(text))

	for i := 0; i+size <= length; i++ {
		fn(Hash(text[starts[i]:starts[i+size]]))
	}
	return nil
}

// Hashes returns the shingle hash multiset in document order.
func Hashes(text string, size int) ([]uint64, error) {
	hashes := make([]uint64, 0, Count(text, size))
	err := Each(text, size, func(h uint64) {
		hashes = append(hashes, h)
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// Extract returns the deduplicated shingle set of text.
func Extract(text string, size int) (Set, error) {
	set := make(Set, Count(text, size))
	err := Each(text, size, func(h uint64) {
		set[h] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Count returns the number of windows text yields, or 0 when it is too short.
func Count(text string, size int) int {
	if size <= 0 {
		return 0
	}
	n := utf8.RuneCountInString(text) - size + 1
	if n < 0 {
		return 0
	}
	return n
}
