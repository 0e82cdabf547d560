package search

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/corpus"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/internal/shingle"
	"github.com/gcbaptista/go-lsh-search/model"
	"github.com/gcbaptista/go-lsh-search/services"
	"github.com/gcbaptista/go-lsh-search/store"
)

// --- Test Helpers ---

func newTestIndexSettings() config.IndexSettings {
	return config.IndexSettings{
		Name:            "test_search_index",
		ShingleSize:     3,
		SignatureLength: 10,
		BandWidth:       2,
		TopN:            10,
	}
}

// setupTestSearchService builds an index over texts and wraps it in a search Service.
func setupTestSearchService(t testing.TB, settings config.IndexSettings, docs []model.Document) (*Service, []indexing.SkippedDocument) {
	t.Helper()

	idx, skipped, err := indexing.Build(context.Background(), docs, settings, indexing.DefaultBuildOptions())
	require.NoError(t, err)

	svc, err := NewService(idx, store.NewDocumentStore(docs), nil)
	require.NoError(t, err)
	return svc, skipped
}

func hitIDs(hits []services.Hit) []int {
	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}
	return ids
}

// --- Tests ---

func TestNewService(t *testing.T) {
	idx, _, err := indexing.Build(context.Background(), model.NewCorpus("ABCDEFGH"), newTestIndexSettings(), indexing.DefaultBuildOptions())
	require.NoError(t, err)

	_, err = NewService(nil, store.FromTexts("ABCDEFGH"), nil)
	assert.Error(t, err)

	_, err = NewService(idx, nil, nil)
	assert.Error(t, err)

	_, err = NewService(idx, store.FromTexts("ABCDEFGH", "IJKLMNOP"), nil)
	assert.Error(t, err, "index and store must describe the same corpus")

	svc, err := NewService(idx, store.FromTexts("ABCDEFGH"), nil)
	require.NoError(t, err)
	assert.Equal(t, "test_search_index", svc.Settings().Name)
}

func TestSearch_IdenticalDocumentsScenario(t *testing.T) {
	docs := model.NewCorpus("AAAABBBB", "AAAABBBB", "ZZZZZZZZ")
	svc, skipped := setupTestSearchService(t, newTestIndexSettings(), docs)

	// "ZZZZZZZZ" has a single distinct shingle, fewer than one band of width 2.
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].DocID)

	for _, id := range []int{0, 1} {
		hits, err := svc.SearchByID(context.Background(), id, 10)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, []int{0, 1}, hitIDs(hits), "ties at 1.0 are broken by ascending id")
		assert.Equal(t, 1.0, hits[0].Similarity)
		assert.Equal(t, 1.0, hits[1].Similarity)
	}

	sim, err := shingle.Jaccard(docs[0].Text, docs[2].Text, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestSearch_IdenticalDocumentsScenarioAllIndexed(t *testing.T) {
	settings := newTestIndexSettings()
	settings.BandWidth = 1

	svc, skipped := setupTestSearchService(t, settings, model.NewCorpus("AAAABBBB", "AAAABBBB", "ZZZZZZZZ"))
	require.Empty(t, skipped)

	hits, err := svc.SearchByID(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []services.Hit{{DocID: 2, Similarity: 1.0}}, hits, "document 2 shares nothing with 0 and 1")

	hits, err = svc.Search(context.Background(), "AAAABBBB", 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, hitIDs(hits))
}

func TestSearch_QueryTooShort(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.NewCorpus("ABCDEFGHIJ"))

	_, err := svc.Search(context.Background(), "AB", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDocumentTooShort)

	var tooShort *errors.DocumentTooShortError
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, errors.QueryDocID, tooShort.DocID)
	assert.Equal(t, errors.ReasonShingle, tooShort.Reason)

	// One distinct shingle cannot fill a band of width 2.
	_, err = svc.Search(context.Background(), "AAAAAA", 5)
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, errors.ReasonBand, tooShort.Reason)
}

func TestSearch_SkippedDocumentNeverCandidate(t *testing.T) {
	docs := model.NewCorpus("ABCDEFGHIJKL", "AB", "ABCDEFGHIJKX", "MNOPQRSTUVWX")
	svc, skipped := setupTestSearchService(t, newTestIndexSettings(), docs)

	require.Len(t, skipped, 1)
	assert.Equal(t, indexing.SkippedDocument{DocID: 1, Reason: errors.ReasonShingle, Length: 2, Required: 3}, skipped[0])
	assert.Equal(t, []int{1}, svc.Index().Skipped())

	for _, doc := range docs {
		candidates, err := svc.Candidates(doc.Text)
		if doc.ID == 1 {
			assert.ErrorIs(t, err, errors.ErrDocumentTooShort)
			continue
		}
		require.NoError(t, err)
		assert.NotContains(t, candidates, 1)
	}

	_, err := svc.SearchByID(context.Background(), 1, 5)
	var tooShort *errors.DocumentTooShortError
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, 1, tooShort.DocID, "errors for stored documents carry their id")
}

func TestSearch_Truncation(t *testing.T) {
	base := "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"
	docs := model.NewCorpus(base, base, base, base, "PACK MY BOX WITH FIVE DOZEN LIQUOR JUGS")
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), docs)

	hits, err := svc.Search(context.Background(), base, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, hitIDs(hits))

	hits, err = svc.Search(context.Background(), base, 0)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	candidates, err := svc.Candidates(base)
	require.NoError(t, err)

	hits, err = svc.Search(context.Background(), base, 100)
	require.NoError(t, err)
	assert.Len(t, hits, len(candidates), "never padded beyond the candidate set")
	for _, h := range hits {
		assert.Positive(t, h.Similarity, "no placeholder zero entries")
	}

	_, err = svc.Search(context.Background(), base, -1)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestSearch_NoCandidates(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.NewCorpus("ABCDEFGHIJKL"))

	hits, err := svc.Search(context.Background(), "0123456789", 10)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), nil)

	hits, err := svc.Search(context.Background(), "ABCDEFGHIJ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Deterministic(t *testing.T) {
	docs, _, err := corpus.NewGenerator(11).PairedCorpus(50, 100)
	require.NoError(t, err)

	first, _ := setupTestSearchService(t, newTestIndexSettings(), docs)
	second, _ := setupTestSearchService(t, newTestIndexSettings(), docs)

	for _, doc := range docs[:10] {
		a, err := first.Search(context.Background(), doc.Text, 5)
		require.NoError(t, err)
		b, err := second.Search(context.Background(), doc.Text, 5)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSearch_SelfSimilarity(t *testing.T) {
	docs, _, err := corpus.NewGenerator(5).PairedCorpus(30, 100)
	require.NoError(t, err)
	svc, skipped := setupTestSearchService(t, newTestIndexSettings(), docs)
	require.Empty(t, skipped)

	for _, doc := range docs {
		hits, err := svc.SearchByID(context.Background(), doc.ID, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, doc.ID, hits[0].DocID)
		assert.Equal(t, 1.0, hits[0].Similarity)
	}
}

func TestSearch_SimilaritySymmetric(t *testing.T) {
	docs, _, err := corpus.NewGenerator(8).PairedCorpus(10, 60)
	require.NoError(t, err)

	for i := range docs {
		for j := range docs {
			ab, err := shingle.Jaccard(docs[i].Text, docs[j].Text, 3)
			require.NoError(t, err)
			ba, err := shingle.Jaccard(docs[j].Text, docs[i].Text, 3)
			require.NoError(t, err)
			assert.Equal(t, ab, ba)
		}
	}
}

func TestSearch_CandidateCompleteness(t *testing.T) {
	docs, _, err := corpus.NewGenerator(21).PairedCorpus(40, 100)
	require.NoError(t, err)
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), docs)
	idx := svc.Index()

	for _, doc := range docs {
		candidates, err := svc.Candidates(doc.Text)
		require.NoError(t, err)

		for _, key := range idx.KeysFor(idx.Signature(doc.ID)) {
			for _, other := range idx.Lookup(key.Slot, key.Key) {
				assert.Contains(t, candidates, other, "doc %d shares a bucket with %d", doc.ID, other)

				otherCandidates, err := svc.Candidates(docs[other].Text)
				require.NoError(t, err)
				assert.Contains(t, otherCandidates, doc.ID, "shared buckets are symmetric")
			}
		}
	}
}

// LSH may miss documents with real overlap when no band matches exactly.
func TestSearch_FalseNegativesArePossible(t *testing.T) {
	settings := newTestIndexSettings()
	settings.SignatureLength = 2
	settings.BandWidth = 2

	found := false
	for seed := uint64(0); seed < 100 && !found; seed++ {
		g := corpus.NewGenerator(seed)
		a := g.RandomString(30)
		b := a[:6] + g.RandomString(24)

		sim, err := shingle.Jaccard(a, b, 3)
		require.NoError(t, err)
		if sim == 0 {
			continue
		}

		svc, _ := setupTestSearchService(t, settings, model.NewCorpus(a, b))
		candidates, err := svc.Candidates(a)
		require.NoError(t, err)
		if !slices.Contains(candidates, 1) {
			found = true
		}
	}
	assert.True(t, found, "expected at least one overlapping pair without a shared bucket")
}

func TestSearch_MoreBandsNeverLowerRecall(t *testing.T) {
	docs, pairs, err := corpus.NewGenerator(2024).PairedCorpus(100, 100)
	require.NoError(t, err)

	narrow := newTestIndexSettings()
	wide := newTestIndexSettings()
	wide.SignatureLength = 100

	narrowSvc, _ := setupTestSearchService(t, narrow, docs)
	wideSvc, _ := setupTestSearchService(t, wide, docs)
	require.Equal(t, 5, narrowSvc.Index().NumBands())
	require.Equal(t, 50, wideSvc.Index().NumBands())

	narrowRecall, wideRecall := 0, 0
	for _, p := range pairs {
		query := docs[p.OriginalID].Text

		narrowCandidates, err := narrowSvc.Candidates(query)
		require.NoError(t, err)
		wideCandidates, err := wideSvc.Candidates(query)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(wideCandidates), len(narrowCandidates))
		for _, id := range narrowCandidates {
			assert.Contains(t, wideCandidates, id)
		}

		if slices.Contains(narrowCandidates, p.MutatedID) {
			narrowRecall++
		}
		if slices.Contains(wideCandidates, p.MutatedID) {
			wideRecall++
		}
	}

	assert.GreaterOrEqual(t, wideRecall, narrowRecall)
	t.Logf("pair recall: K=10 %d/%d, K=100 %d/%d", narrowRecall, len(pairs), wideRecall, len(pairs))
}

func TestSearch_MaxCandidates(t *testing.T) {
	base := "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"
	settings := newTestIndexSettings()
	settings.MaxCandidates = 2

	svc, _ := setupTestSearchService(t, settings, model.NewCorpus(base, base, base, base))

	candidates, err := svc.Candidates(base)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, candidates, "lowest ids are kept")

	hits, err := svc.Search(context.Background(), base, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchByID_NotFound(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.NewCorpus("ABCDEFGHIJ"))

	_, err := svc.SearchByID(context.Background(), 5, 3)
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)

	_, err = svc.SearchByID(context.Background(), -1, 3)
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)
}

func TestFreeFunctions(t *testing.T) {
	docs := model.NewCorpus("AAAABBBB", "AAAABBBB")
	idx, _, err := indexing.Build(context.Background(), docs, newTestIndexSettings(), indexing.DefaultBuildOptions())
	require.NoError(t, err)
	ds := store.NewDocumentStore(docs)

	hits, err := Search(context.Background(), idx, ds, "AAAABBBB", 1)
	require.NoError(t, err)
	assert.Equal(t, []services.Hit{{DocID: 0, Similarity: 1.0}}, hits)

	hits, err = SearchByID(context.Background(), idx, ds, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, hitIDs(hits))
}

func TestExecute(t *testing.T) {
	docs := []model.Document{
		{Name: "a.txt", Text: "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"},
		{Name: "b.txt", Text: "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"},
	}
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.Renumber(docs))

	docID := 1
	topN := 1
	result, err := svc.Execute(context.Background(), services.SearchQuery{DocID: &docID, TopN: &topN})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "a.txt", result.Hits[0].Name)
	assert.Equal(t, 2, result.Candidates)
	assert.NotEmpty(t, result.QueryId)

	result, err = svc.Execute(context.Background(), services.SearchQuery{Query: docs[0].Text})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2, "index default top_n applies")

	missing := 9
	_, err = svc.Execute(context.Background(), services.SearchQuery{DocID: &missing})
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)
}

func TestDocument(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.NewCorpus("ABCDEFGHIJKLMNOP", "AB"))

	info, err := svc.Document(0)
	require.NoError(t, err)
	assert.True(t, info.Indexed)
	assert.Equal(t, 14, info.ShingleCount)
	assert.Len(t, info.Signature, 10)
	assert.Len(t, info.Signature[0], 16)
	assert.Len(t, info.Bands, 5)

	info, err = svc.Document(1)
	require.NoError(t, err)
	assert.False(t, info.Indexed)
	assert.Empty(t, info.Signature)
	assert.NotNil(t, info.Bands)

	_, err = svc.Document(2)
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)
}

func TestStats(t *testing.T) {
	svc, _ := setupTestSearchService(t, newTestIndexSettings(), model.NewCorpus("AAAABBBB", "AAAABBBB", "AB"))

	stats := svc.Stats()
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 2, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 5, stats.Bands)
	assert.Equal(t, []int{1, 1, 0, 0, 0}, stats.BucketsPerSlot, "four shingles fill two bands")
	assert.IsType(t, index.IndexStats{}, stats)
}
