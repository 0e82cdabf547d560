// Package search answers near-duplicate queries against a built LSH index:
// band lookups produce candidates, which are then reranked by exact Jaccard
// similarity of their full shingle sets.
package search

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/logger"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
	"github.com/gcbaptista/go-lsh-search/internal/minhash"
	"github.com/gcbaptista/go-lsh-search/internal/shingle"
	"github.com/gcbaptista/go-lsh-search/services"
	"github.com/gcbaptista/go-lsh-search/store"
)

// Service implements the search logic for a single index.
// It fulfills the services.IndexAccessor interface.
type Service struct {
	idx     *index.LSHIndex
	docs    *store.DocumentStore
	metrics *metrics.Metrics
	workers int
	log     *slog.Logger
}

// NewService creates a new search Service over a built index and the corpus it
// was built from. m may be nil.
func NewService(idx *index.LSHIndex, docs *store.DocumentStore, m *metrics.Metrics) (*Service, error) {
	if idx == nil {
		return nil, fmt.Errorf("lsh index cannot be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if idx.NumDocuments() != docs.Len() {
		return nil, fmt.Errorf("index covers %d documents but store holds %d", idx.NumDocuments(), docs.Len())
	}
	return &Service{
		idx:     idx,
		docs:    docs,
		metrics: m,
		workers: runtime.NumCPU(),
		log:     logger.WithComponent("search").With("index", idx.Settings.Name),
	}, nil
}

// Settings returns the settings the index was built with.
func (s *Service) Settings() config.IndexSettings {
	return s.idx.Settings
}

// Stats returns bucket statistics of the underlying index.
func (s *Service) Stats() index.IndexStats {
	return s.idx.Stats()
}

// Index exposes the underlying index.
func (s *Service) Index() *index.LSHIndex {
	return s.idx
}

// Search returns up to topN corpus documents most similar to queryText, by
// descending Jaccard similarity and ascending id on ties. A query with no
// candidates yields an empty list, not an error.
func (s *Service) Search(ctx context.Context, queryText string, topN int) ([]services.Hit, error) {
	hits, _, err := s.search(ctx, queryText, errors.QueryDocID, topN)
	return hits, err
}

// SearchByID searches with the text of an existing document. The document
// itself is part of the result when it is indexed.
func (s *Service) SearchByID(ctx context.Context, docID int, topN int) ([]services.Hit, error) {
	doc, err := s.docs.Get(docID)
	if err != nil {
		return nil, errors.NewDocumentNotFoundError(docID, s.idx.Settings.Name)
	}
	hits, _, err := s.search(ctx, doc.Text, docID, topN)
	return hits, err
}

// Candidates returns the ids sharing at least one band with queryText, ascending,
// after the MaxCandidates cap.
func (s *Service) Candidates(queryText string) ([]int, error) {
	pq, err := s.prepare(queryText, errors.QueryDocID)
	if err != nil {
		return nil, err
	}
	return pq.candidates, nil
}

// Execute runs a SearchQuery and wraps the hits with timing and a query id.
func (s *Service) Execute(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	topN := s.idx.Settings.TopN
	if query.TopN != nil {
		topN = *query.TopN
	}

	text, docID := query.Query, errors.QueryDocID
	if query.DocID != nil {
		doc, err := s.docs.Get(*query.DocID)
		if err != nil {
			s.metrics.ObserveSearch(time.Since(startTime), 0, 0, err)
			return services.SearchResult{}, errors.NewDocumentNotFoundError(*query.DocID, s.idx.Settings.Name)
		}
		text, docID = doc.Text, doc.ID
	}

	hits, candidates, err := s.search(ctx, text, docID, topN)
	took := time.Since(startTime)
	if err != nil {
		return services.SearchResult{}, err
	}

	queryUUID := uuid.New().String()
	s.log.Debug("search executed", "query_id", queryUUID, "candidates", candidates, "hits", len(hits), "took", took)

	return services.SearchResult{
		Hits:       hits,
		Candidates: candidates,
		Took:       took.Milliseconds(),
		QueryId:    queryUUID,
	}, nil
}

func (s *Service) search(ctx context.Context, text string, docID int, topN int) ([]services.Hit, int, error) {
	start := time.Now()
	hits, candidates, err := s.searchUnobserved(ctx, text, docID, topN)
	s.metrics.ObserveSearch(time.Since(start), candidates, len(hits), err)
	return hits, candidates, err
}

func (s *Service) searchUnobserved(ctx context.Context, text string, docID int, topN int) ([]services.Hit, int, error) {
	if topN < 0 {
		return nil, 0, errors.NewConfigError("top_n", fmt.Sprintf("must be >= 0, got %d", topN))
	}

	pq, err := s.prepare(text, docID)
	if err != nil {
		return nil, 0, err
	}

	hits, err := s.rank(ctx, pq)
	if err != nil {
		return nil, len(pq.candidates), err
	}
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, len(pq.candidates), nil
}

// prepare shingles the query, derives its band keys and collects candidates.
// docID is reported in DocumentTooShortError (QueryDocID for free text).
func (s *Service) prepare(text string, docID int) (preparedQuery, error) {
	settings := s.idx.Settings

	set, err := shingle.Extract(text, settings.ShingleSize)
	if err != nil {
		return preparedQuery{}, withDocID(err, docID)
	}

	sig := minhash.FromSet(set, settings.SignatureLength)
	keys := s.idx.KeysFor(sig)
	if len(keys) == 0 {
		return preparedQuery{}, errors.NewDocumentTooShortError(docID, sig.Len(), settings.BandWidth, errors.ReasonBand)
	}

	candidates := s.idx.Candidates(keys)
	if limit := settings.MaxCandidates; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return preparedQuery{set: set, candidates: candidates}, nil
}

// Document describes how docID was shingled, signed and banded.
func (s *Service) Document(docID int) (services.DocumentInfo, error) {
	doc, err := s.docs.Get(docID)
	if err != nil {
		return services.DocumentInfo{}, errors.NewDocumentNotFoundError(docID, s.idx.Settings.Name)
	}

	sig := s.idx.Signature(docID)
	encoded := make([]string, len(sig))
	var buf [8]byte
	for i, v := range sig {
		binary.BigEndian.PutUint64(buf[:], v)
		encoded[i] = hex.EncodeToString(buf[:])
	}

	bands := s.idx.KeysFor(sig)
	if bands == nil {
		bands = []index.BandKey{}
	}

	return services.DocumentInfo{
		Document:     doc,
		ShingleCount: shingle.Count(doc.Text, s.idx.Settings.ShingleSize),
		Signature:    encoded,
		Bands:        bands,
		Indexed:      s.idx.IsIndexed(docID),
	}, nil
}

func withDocID(err error, docID int) error {
	var tooShort *errors.DocumentTooShortError
	if stdErrors.As(err, &tooShort) {
		return errors.NewDocumentTooShortError(docID, tooShort.Length, tooShort.Required, tooShort.Reason)
	}
	return err
}

// Search is a one-shot query without a long-lived Service.
func Search(ctx context.Context, idx *index.LSHIndex, docs *store.DocumentStore, queryText string, topN int) ([]services.Hit, error) {
	svc, err := NewService(idx, docs, nil)
	if err != nil {
		return nil, err
	}
	return svc.Search(ctx, queryText, topN)
}

// SearchByID is a one-shot query by document id without a long-lived Service.
func SearchByID(ctx context.Context, idx *index.LSHIndex, docs *store.DocumentStore, docID int, topN int) ([]services.Hit, error) {
	svc, err := NewService(idx, docs, nil)
	if err != nil {
		return nil, err
	}
	return svc.SearchByID(ctx, docID, topN)
}
