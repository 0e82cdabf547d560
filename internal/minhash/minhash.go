// Package minhash computes bottom-K MinHash signatures: the K smallest distinct
// shingle hashes of a document under a single hash function, sorted ascending.
package minhash

import (
	"container/heap"
	"slices"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/shingle"
)

// Signature is the ascending list of the smallest distinct shingle hashes.
// Its length is min(K, distinct shingle count).
type Signature []uint64

// Len returns the number of values in the signature.
func (s Signature) Len() int {
	return len(s)
}

// Bands returns how many full bands of the given width the signature covers.
func (s Signature) Bands(width int) int {
	if width <= 0 {
		return 0
	}
	return len(s) / width
}

// Band returns the i-th band of the given width. The caller guarantees i < Bands(width).
func (s Signature) Band(i, width int) []uint64 {
	return s[i*width : (i+1)*width]
}

// Equal reports whether two signatures hold the same values in the same order.
func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s, other)
}

// maxHeap keeps the current K smallest values with the largest on top.
type maxHeap []uint64

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(uint64)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Selector streams hashes and retains the K smallest distinct ones.
// Memory is O(K) regardless of how many hashes are added.
type Selector struct {
	k       int
	heap    maxHeap
	members map[uint64]struct{}
}

// NewSelector creates a selector retaining at most k values.
func NewSelector(k int) *Selector {
	return &Selector{
		k:       k,
		heap:    make(maxHeap, 0, k),
		members: make(map[uint64]struct{}, k),
	}
}

// Add offers a hash to the selector. Values already retained are ignored.
func (s *Selector) Add(h uint64) {
	if s.k <= 0 {
		return
	}
	if _, seen := s.members[h]; seen {
		return
	}

	if len(s.heap) < s.k {
		heap.Push(&s.heap, h)
		s.members[h] = struct{}{}
		return
	}

	if top := s.heap[0]; h < top {
		delete(s.members, top)
		s.heap[0] = h
		s.members[h] = struct{}{}
		heap.Fix(&s.heap, 0)
	}
}

// Len returns how many values are currently retained.
func (s *Selector) Len() int {
	return len(s.heap)
}

// Signature returns the retained values in ascending order.
// The selector can keep receiving values afterwards.
func (s *Selector) Signature() Signature {
	sig := make(Signature, len(s.heap))
	copy(sig, s.heap)
	slices.Sort(sig)
	return sig
}

// Compute returns the signature of text with K values from shingles of size shingleSize.
// It fails with a DocumentTooShortError when text has fewer characters than shingleSize.
func Compute(text string, shingleSize, k int) (Signature, error) {
	if k <= 0 {
		return nil, errors.NewConfigError("signature_length", "must be > 0")
	}

	selector := NewSelector(k)
	if err := shingle.Each(text, shingleSize, selector.Add); err != nil {
		return nil, err
	}
	return selector.Signature(), nil
}

// FromSet selects the signature from an already materialised shingle set.
func FromSet(set shingle.Set, k int) Signature {
	selector := NewSelector(k)
	for h := range set {
		selector.Add(h)
	}
	return selector.Signature()
}
