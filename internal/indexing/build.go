package indexing

import (
	"context"
	stdErrors "errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/minhash"
	"github.com/gcbaptista/go-lsh-search/model"
)

// BuildOptions tunes how an index is built.
type BuildOptions struct {
	Workers  int                   // Signature workers; <= 0 means runtime.NumCPU()
	Progress func(done, total int) // Called after each document; calls are serialized
}

// DefaultBuildOptions uses every available core and reports no progress.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Workers: runtime.NumCPU()}
}

// SkippedDocument records a document left out of the index and why.
type SkippedDocument struct {
	DocID    int    `json:"doc_id"`
	Reason   string `json:"reason"`
	Length   int    `json:"length"`
	Required int    `json:"required"`
}

// Error renders the skip reason the same way the underlying error does.
func (s SkippedDocument) Error() string {
	return errors.NewDocumentTooShortError(s.DocID, s.Length, s.Required, s.Reason).Error()
}

// docBands is the per-document output of the parallel phase.
type docBands struct {
	sig     minhash.Signature
	keys    []index.BandKey
	skipped *SkippedDocument
}

// Build validates settings, computes every document's signature in parallel and
// then fills each band-slot's table from a single goroutine per slot.
// Documents too short to shingle, or to fill one band, are returned as skipped
// and never fail the build.
func Build(ctx context.Context, docs []model.Document, settings config.IndexSettings, opts BuildOptions) (*index.LSHIndex, []SkippedDocument, error) {
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	idx, err := index.NewLSHIndex(settings, len(docs))
	if err != nil {
		return nil, nil, err
	}

	results, err := computeBands(ctx, docs, settings, idx.NumBands(), opts)
	if err != nil {
		return nil, nil, err
	}

	skipped := make([]SkippedDocument, 0)
	for id, r := range results {
		if r.skipped != nil {
			skipped = append(skipped, *r.skipped)
			idx.MarkSkipped(id)
			continue
		}
		idx.SetSignature(id, r.sig)
	}

	if err := mergeSlots(ctx, idx, results); err != nil {
		return nil, nil, err
	}

	return idx, skipped, nil
}

// computeBands is the map phase: each worker writes only its own slot of the result slice.
func computeBands(ctx context.Context, docs []model.Document, settings config.IndexSettings, numBands int, opts BuildOptions) ([]docBands, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]docBands, len(docs))
	total := len(docs)

	var progressMu sync.Mutex
	done := 0
	report := func() {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		done++
		opts.Progress(done, total)
		progressMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := signDocument(i, docs[i].Text, settings, numBands)
			if err != nil {
				return err
			}
			results[i] = r
			report()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute signatures: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build cancelled: %w", err)
	}
	return results, nil
}

func signDocument(docID int, text string, settings config.IndexSettings, numBands int) (docBands, error) {
	sig, err := minhash.Compute(text, settings.ShingleSize, settings.SignatureLength)
	if err != nil {
		var tooShort *errors.DocumentTooShortError
		if stdErrors.As(err, &tooShort) {
			return docBands{skipped: &SkippedDocument{
				DocID:    docID,
				Reason:   tooShort.Reason,
				Length:   tooShort.Length,
				Required: tooShort.Required,
			}}, nil
		}
		return docBands{}, fmt.Errorf("signature for document %d: %w", docID, err)
	}

	keys := index.BandKeys(sig, settings.BandWidth)
	if len(keys) == 0 {
		return docBands{skipped: &SkippedDocument{
			DocID:    docID,
			Reason:   errors.ReasonBand,
			Length:   sig.Len(),
			Required: settings.BandWidth,
		}}, nil
	}
	if len(keys) > numBands {
		keys = keys[:numBands]
	}
	return docBands{sig: sig, keys: keys}, nil
}

// mergeSlots is the reduce phase: one goroutine owns each band-slot table and
// walks documents in id order, so bucket lists come out ascending without locks.
func mergeSlots(ctx context.Context, idx *index.LSHIndex, results []docBands) error {
	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < idx.NumBands(); slot++ {
		g.Go(func() error {
			for id, r := range results {
				if id%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if slot < len(r.keys) {
					idx.AddToSlot(slot, r.keys[slot].Key, id)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("build cancelled: %w", err)
	}
	return nil
}
