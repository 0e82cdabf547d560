package model

import "strconv"

// Document is one entry of a corpus. ID is its position in the corpus and is
// the identifier returned in search results. Name is an optional external label,
// such as the file path the text was loaded from.
type Document struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// Label returns Name when set, otherwise a "doc-<id>" placeholder.
func (d Document) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return "doc-" + strconv.Itoa(d.ID)
}

// NewCorpus assigns positional ids to raw texts.
func NewCorpus(texts ...string) []Document {
	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: i, Text: text}
	}
	return docs
}

// Renumber rewrites ids to match slice positions, returning the same slice.
func Renumber(docs []Document) []Document {
	for i := range docs {
		docs[i].ID = i
	}
	return docs
}
