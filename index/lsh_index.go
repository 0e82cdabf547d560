// Package index holds the LSH bucket tables: one table per band-slot mapping a
// band key to the ids of the documents whose band hashed to it.
package index

import (
	"fmt"
	"slices"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/minhash"
)

// BucketTable maps a band key to document ids in ascending order.
type BucketTable map[uint64][]int

// LSHIndex is the banded MinHash index of one corpus load.
//
// It is populated by the indexing package and is read-only afterwards, so
// lookups need no locking. Tables are never merged across band-slots.
type LSHIndex struct {
	Settings   config.IndexSettings
	Tables     []BucketTable
	signatures []minhash.Signature
	skipped    []int
}

// NewLSHIndex allocates an empty index for numDocs documents.
func NewLSHIndex(settings config.IndexSettings, numDocs int) (*LSHIndex, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if numDocs < 0 {
		return nil, fmt.Errorf("negative document count %d", numDocs)
	}

	tables := make([]BucketTable, settings.NumBands())
	for i := range tables {
		tables[i] = make(BucketTable)
	}

	return &LSHIndex{
		Settings:   settings,
		Tables:     tables,
		signatures: make([]minhash.Signature, numDocs),
	}, nil
}

// WithQuerySettings returns a view of the index that shares its tables and
// signatures but answers with different query-time settings. Only TopN and
// MaxCandidates are taken from settings; build parameters are kept.
func (idx *LSHIndex) WithQuerySettings(settings config.IndexSettings) *LSHIndex {
	view := *idx
	view.Settings.TopN = settings.TopN
	view.Settings.MaxCandidates = settings.MaxCandidates
	return &view
}

// SetSignature records the signature computed for a document. Build-time only.
func (idx *LSHIndex) SetSignature(docID int, sig minhash.Signature) {
	idx.signatures[docID] = sig
}

// MarkSkipped records documents that could not be indexed. Build-time only.
func (idx *LSHIndex) MarkSkipped(docIDs ...int) {
	idx.skipped = append(idx.skipped, docIDs...)
	slices.Sort(idx.skipped)
}

// AddToSlot appends docID to the bucket key in the given band-slot. Build-time only;
// concurrent callers must each own a distinct slot and add ids in ascending order.
func (idx *LSHIndex) AddToSlot(slot int, key uint64, docID int) {
	table := idx.Tables[slot]
	table[key] = append(table[key], docID)
}

// NumBands returns the number of band-slots (K/W).
func (idx *LSHIndex) NumBands() int {
	return len(idx.Tables)
}

// NumDocuments returns the size of the corpus the index was built over.
func (idx *LSHIndex) NumDocuments() int {
	return len(idx.signatures)
}

// Signature returns the stored signature for docID, or nil when unknown or skipped.
func (idx *LSHIndex) Signature(docID int) minhash.Signature {
	if docID < 0 || docID >= len(idx.signatures) {
		return nil
	}
	return idx.signatures[docID]
}

// IsIndexed reports whether docID contributed at least one band.
func (idx *LSHIndex) IsIndexed(docID int) bool {
	return idx.Signature(docID).Bands(idx.Settings.BandWidth) > 0
}

// Skipped returns the ids of documents left out of the index, ascending.
func (idx *LSHIndex) Skipped() []int {
	return slices.Clone(idx.skipped)
}

// KeysFor returns the band keys of an arbitrary signature under this index's settings.
func (idx *LSHIndex) KeysFor(sig minhash.Signature) []BandKey {
	keys := BandKeys(sig, idx.Settings.BandWidth)
	if len(keys) > len(idx.Tables) {
		keys = keys[:len(idx.Tables)]
	}
	return keys
}

// Lookup returns the ids in one bucket. The slice must not be modified.
func (idx *LSHIndex) Lookup(slot int, key uint64) []int {
	if slot < 0 || slot >= len(idx.Tables) {
		return nil
	}
	return idx.Tables[slot][key]
}

// Candidates returns the union of the buckets addressed by keys, each id once,
// in ascending order.
func (idx *LSHIndex) Candidates(keys []BandKey) []int {
	seen := make(map[int]struct{})
	for _, k := range keys {
		for _, id := range idx.Lookup(k.Slot, k.Key) {
			seen[id] = struct{}{}
		}
	}

	candidates := make([]int, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	slices.Sort(candidates)
	return candidates
}

// SharedBuckets calls fn once per bucket holding more than one document.
func (idx *LSHIndex) SharedBuckets(fn func(slot int, ids []int)) {
	for slot, table := range idx.Tables {
		for _, ids := range table {
			if len(ids) > 1 {
				fn(slot, ids)
			}
		}
	}
}
