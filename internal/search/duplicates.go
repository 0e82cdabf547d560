package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/shingle"
	"github.com/gcbaptista/go-lsh-search/services"
)

// FindDuplicates returns every pair of indexed documents that share at least one
// bucket and whose exact Jaccard similarity is at least threshold. Each pair is
// reported once with DocID1 < DocID2, ordered by similarity descending then ids.
func (s *Service) FindDuplicates(ctx context.Context, threshold float64) ([]services.DuplicatePair, error) {
	if threshold < 0 || threshold > 1 {
		return nil, errors.NewValidationError("threshold", fmt.Sprintf("must be within [0, 1], got %g", threshold))
	}

	type pairKey struct{ a, b int }
	pairs := make(map[pairKey]struct{})
	involved := make(map[int]struct{})
	s.idx.SharedBuckets(func(_ int, ids []int) {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs[pairKey{ids[i], ids[j]}] = struct{}{}
			}
			involved[ids[i]] = struct{}{}
		}
	})

	sets, err := s.shingleSets(ctx, involved)
	if err != nil {
		return nil, err
	}

	result := make([]services.DuplicatePair, 0)
	for p := range pairs {
		sim := sets[p.a].Jaccard(sets[p.b])
		if sim < threshold {
			continue
		}
		result = append(result, services.DuplicatePair{
			DocID1:     p.a,
			DocID2:     p.b,
			Name1:      s.docs.Documents()[p.a].Name,
			Name2:      s.docs.Documents()[p.b].Name,
			Similarity: sim,
		})
	}

	slices.SortFunc(result, func(x, y services.DuplicatePair) int {
		if c := cmp.Compare(y.Similarity, x.Similarity); c != 0 {
			return c
		}
		if c := cmp.Compare(x.DocID1, y.DocID1); c != 0 {
			return c
		}
		return cmp.Compare(x.DocID2, y.DocID2)
	})

	s.log.Debug("duplicate scan finished", "pairs_checked", len(pairs), "pairs_found", len(result), "threshold", threshold)
	return result, nil
}

// shingleSets extracts the shingle set of every listed document in parallel.
func (s *Service) shingleSets(ctx context.Context, docIDs map[int]struct{}) (map[int]shingle.Set, error) {
	var mu sync.Mutex
	sets := make(map[int]shingle.Set, len(docIDs))
	size := s.idx.Settings.ShingleSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for docID := range docIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := shingle.Extract(s.docs.Text(docID), size)
			if err != nil {
				return fmt.Errorf("document %d: %w", docID, err)
			}
			mu.Lock()
			sets[docID] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to extract shingle sets: %w", err)
	}
	return sets, nil
}
