package services

import (
	"context"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/model"
)

// Hit is one ranked result: a corpus document and its exact Jaccard similarity to the query.
type Hit struct {
	DocID      int     `json:"doc_id"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity"`
}

// SearchQuery is a query by text, or by the text of an indexed document when DocID is set.
type SearchQuery struct {
	Query string `json:"query,omitempty"`
	DocID *int   `json:"doc_id,omitempty"`
	TopN  *int   `json:"top_n,omitempty"` // nil = index default
}

type SearchResult struct {
	Hits       []Hit  `json:"hits"`
	Candidates int    `json:"candidates"` // distinct documents reranked
	Took       int64  `json:"took"`       // milliseconds
	QueryId    string `json:"query_id"`   // unique UUID for this search query
}

// MultiSearchQuery represents a request to execute multiple named search queries
type MultiSearchQuery struct {
	Queries []NamedSearchQuery `json:"queries"`
	TopN    *int               `json:"top_n,omitempty"`
}

// NamedSearchQuery represents a single named search query within a multi-search request
type NamedSearchQuery struct {
	Name  string `json:"name"`
	Query string `json:"query,omitempty"`
	DocID *int   `json:"doc_id,omitempty"`
}

// MultiSearchResult represents the response from a multi-search operation
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// DuplicatePair is two indexed documents sharing a bucket with similarity at or above a threshold.
// DocID1 < DocID2.
type DuplicatePair struct {
	DocID1     int     `json:"doc_id_1"`
	DocID2     int     `json:"doc_id_2"`
	Name1      string  `json:"name_1,omitempty"`
	Name2      string  `json:"name_2,omitempty"`
	Similarity float64 `json:"similarity"`
}

// DocumentInfo describes how a document was indexed.
type DocumentInfo struct {
	Document     model.Document  `json:"document"`
	ShingleCount int             `json:"shingle_count"`
	Signature    []string        `json:"signature"` // hex, uint64 does not survive JSON numbers
	Bands        []index.BandKey `json:"bands"`
	Indexed      bool            `json:"indexed"`
}

// Searcher defines operations for querying an index
type Searcher interface {
	Search(ctx context.Context, query string, topN int) ([]Hit, error)
	SearchByID(ctx context.Context, docID int, topN int) ([]Hit, error)
	Execute(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// MultiSearcher defines operations for performing multiple queries in a single request
type MultiSearcher interface {
	MultiSearch(ctx context.Context, query MultiSearchQuery) (*MultiSearchResult, error)
}

// DuplicateFinder lists near-duplicate pairs already present in the corpus
type DuplicateFinder interface {
	FindDuplicates(ctx context.Context, threshold float64) ([]DuplicatePair, error)
}

type IndexAccessor interface {
	Searcher
	MultiSearcher
	DuplicateFinder
	Settings() config.IndexSettings
	Stats() index.IndexStats
	Document(docID int) (DocumentInfo, error)
}

// IndexManager manages the lifecycle of in-memory indexes
type IndexManager interface {
	CreateIndex(ctx context.Context, settings config.IndexSettings, docs []model.Document) (indexing.BuildReport, error)
	GetIndex(name string) (IndexAccessor, error)
	GetIndexSettings(name string) (config.IndexSettings, error)
	RebuildIndex(ctx context.Context, name string, settings config.IndexSettings) (indexing.BuildReport, error)
	DeleteIndex(name string) error
	ListIndexes() []string
}

// AsyncIndexManager runs builds as background jobs, returning the job id
type AsyncIndexManager interface {
	IndexManager
	CreateIndexAsync(settings config.IndexSettings, docs []model.Document) (string, error)
	RebuildIndexAsync(name string, settings config.IndexSettings) (string, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(indexName string, status *model.JobStatus) []*model.Job
}
