// Package corpus produces documents for the index: synthetic near-duplicate
// pairs for experiments and benchmarks, and text files matched by glob patterns.
package corpus

import (
	"fmt"
	"math/rand/v2"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/model"
)

const (
	// Charset is the alphabet random documents are drawn from.
	Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// DefaultChangeSize is the edit window used by Mutate; each edit touches changeSize+1 characters.
	DefaultChangeSize = 5
)

// Operation names the edit applied by Mutate.
type Operation int

const (
	OpInsert Operation = iota
	OpDelete
	OpReplace // delete followed by insert at the same position
)

func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Mutation describes one edit.
type Mutation struct {
	Op    Operation `json:"op"`
	Start int       `json:"start"`
	Count int       `json:"count"`
}

// Generator is a seeded source of random documents. Not safe for concurrent use.
type Generator struct {
	rng        *rand.Rand
	ChangeSize int
}

// NewGenerator returns a deterministic generator for seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		ChangeSize: DefaultChangeSize,
	}
}

func (g *Generator) randomChar() byte {
	return Charset[g.rng.IntN(len(Charset))]
}

// RandomString returns n characters drawn uniformly from Charset.
func (g *Generator) RandomString(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = g.randomChar()
	}
	return string(buf)
}

// MinMutableLength is the shortest text Mutate accepts for the generator's change size.
func (g *Generator) MinMutableLength() int {
	return 2*g.ChangeSize + 2
}

// Mutate applies one random edit of ChangeSize+1 characters: an insertion, a
// deletion, or a deletion followed by an insertion. The edit starts at a
// position in [ChangeSize, len-ChangeSize-1).
func (g *Generator) Mutate(s string) (string, Mutation, error) {
	runes := []rune(s)
	if len(runes) < g.MinMutableLength() {
		return "", Mutation{}, errors.NewValidationError("text",
			fmt.Sprintf("need at least %d characters to mutate, got %d", g.MinMutableLength(), len(runes)))
	}

	count := g.ChangeSize + 1
	start := g.ChangeSize + g.rng.IntN(len(runes)-2*g.ChangeSize-1)
	op := Operation(g.rng.IntN(3))

	insert := func(rs []rune) []rune {
		fresh := make([]rune, count)
		for i := range fresh {
			fresh[i] = rune(g.randomChar())
		}
		out := make([]rune, 0, len(rs)+count)
		out = append(out, rs[:start]...)
		out = append(out, fresh...)
		return append(out, rs[start:]...)
	}
	remove := func(rs []rune) []rune {
		end := min(start+count, len(rs))
		out := make([]rune, 0, len(rs))
		out = append(out, rs[:start]...)
		return append(out, rs[end:]...)
	}

	switch op {
	case OpInsert:
		runes = insert(runes)
	case OpDelete:
		runes = remove(runes)
	default:
		runes = insert(remove(runes))
	}

	return string(runes), Mutation{Op: op, Start: start, Count: count}, nil
}

// Documents returns n random documents of the given length.
func (g *Generator) Documents(n, length int) []model.Document {
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = model.Document{ID: i, Text: g.RandomString(length)}
	}
	return docs
}

// Pair links an original document to its mutated copy.
type Pair struct {
	OriginalID int      `json:"original_id"`
	MutatedID  int      `json:"mutated_id"`
	Mutation   Mutation `json:"mutation"`
}

// PairedCorpus returns n random originals followed by one mutation of each, so
// document i and document n+i are near-duplicates.
func (g *Generator) PairedCorpus(n, length int) ([]model.Document, []Pair, error) {
	docs := make([]model.Document, 0, 2*n)
	for i := 0; i < n; i++ {
		docs = append(docs, model.Document{ID: i, Name: fmt.Sprintf("original-%d", i), Text: g.RandomString(length)})
	}

	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		mutated, m, err := g.Mutate(docs[i].Text)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to mutate document %d: %w", i, err)
		}
		docs = append(docs, model.Document{ID: n + i, Name: fmt.Sprintf("mutated-%d", i), Text: mutated})
		pairs[i] = Pair{OriginalID: i, MutatedID: n + i, Mutation: m}
	}
	return docs, pairs, nil
}
