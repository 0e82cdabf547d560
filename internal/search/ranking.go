package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-lsh-search/internal/shingle"
	"github.com/gcbaptista/go-lsh-search/services"
)

// rank scores every candidate by exact Jaccard similarity against the query
// set. Candidates are scored independently in parallel; shingle sets are
// recomputed from the stored text since the index keeps ids only.
func (s *Service) rank(ctx context.Context, pq preparedQuery) ([]services.Hit, error) {
	hits := make([]services.Hit, len(pq.candidates))
	if len(hits) == 0 {
		return hits, nil
	}

	size := s.idx.Settings.ShingleSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, docID := range pq.candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.docs.Get(docID)
			if err != nil {
				return err
			}
			set, err := shingle.Extract(doc.Text, size)
			if err != nil {
				return fmt.Errorf("candidate %d: %w", docID, err)
			}
			hits[i] = services.Hit{
				DocID:      docID,
				Name:       doc.Name,
				Similarity: pq.set.Jaccard(set),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	sortHits(hits)
	return hits, nil
}

// sortHits orders by similarity descending, then id ascending.
func sortHits(hits []services.Hit) {
	slices.SortFunc(hits, func(a, b services.Hit) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.DocID, b.DocID)
	})
}
