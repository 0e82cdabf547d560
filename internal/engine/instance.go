package engine

import (
	"fmt"
	"time"

	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
	"github.com/gcbaptista/go-lsh-search/internal/search"
	"github.com/gcbaptista/go-lsh-search/store"
)

// IndexInstance is one built index together with the corpus it was built from.
// It implements the services.IndexAccessor interface through its search service.
// Instances are immutable; a rebuild replaces the whole instance.
type IndexInstance struct {
	*search.Service
	docs    *store.DocumentStore
	report  indexing.BuildReport
	builtAt time.Time
}

func newIndexInstance(idx *index.LSHIndex, docs *store.DocumentStore, report indexing.BuildReport, m *metrics.Metrics) (*IndexInstance, error) {
	searchService, err := search.NewService(idx, docs, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service for index '%s': %w", idx.Settings.Name, err)
	}
	return &IndexInstance{
		Service: searchService,
		docs:    docs,
		report:  report,
		builtAt: time.Now(),
	}, nil
}

// Report returns the report of the build that produced this instance.
func (i *IndexInstance) Report() indexing.BuildReport {
	return i.report
}

// BuiltAt returns when the instance was built.
func (i *IndexInstance) BuiltAt() time.Time {
	return i.builtAt
}
