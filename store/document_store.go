// Package store holds the read-only corpus an index is built over.
package store

import (
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/model"
)

// DocumentStore is an ordered, immutable corpus. Document ids are positions.
// Indexes keep ids only and resolve text through the store.
type DocumentStore struct {
	docs []model.Document
}

// NewDocumentStore wraps docs, renumbering ids to their positions.
// The slice is copied so later caller mutations do not leak in.
func NewDocumentStore(docs []model.Document) *DocumentStore {
	owned := make([]model.Document, len(docs))
	copy(owned, docs)
	return &DocumentStore{docs: model.Renumber(owned)}
}

// FromTexts builds a store from raw strings.
func FromTexts(texts ...string) *DocumentStore {
	return &DocumentStore{docs: model.NewCorpus(texts...)}
}

// Len returns the number of documents.
func (ds *DocumentStore) Len() int {
	return len(ds.docs)
}

// Get returns the document with the given id.
func (ds *DocumentStore) Get(docID int) (model.Document, error) {
	if docID < 0 || docID >= len(ds.docs) {
		return model.Document{}, errors.NewDocumentNotFoundError(docID)
	}
	return ds.docs[docID], nil
}

// Text returns the text of docID, or "" when out of range.
func (ds *DocumentStore) Text(docID int) string {
	if docID < 0 || docID >= len(ds.docs) {
		return ""
	}
	return ds.docs[docID].Text
}

// Documents returns the backing slice. Callers must not modify it.
func (ds *DocumentStore) Documents() []model.Document {
	return ds.docs
}
