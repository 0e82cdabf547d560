package engine

import (
	"context"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/model"
	"github.com/gcbaptista/go-lsh-search/store"
)

// CreateIndex builds a new index over docs. Document ids are reassigned to
// their position in docs. Zero-valued settings take the defaults.
func (e *Engine) CreateIndex(ctx context.Context, settings config.IndexSettings, docs []model.Document) (indexing.BuildReport, error) {
	return e.createIndex(ctx, settings, docs, nil)
}

func (e *Engine) createIndex(ctx context.Context, settings config.IndexSettings, docs []model.Document, progress func(done, total int)) (indexing.BuildReport, error) {
	settings, err := prepareSettings(settings)
	if err != nil {
		return indexing.BuildReport{}, err
	}
	if err := e.reserve(settings.Name); err != nil {
		return indexing.BuildReport{}, err
	}
	defer e.release(settings.Name)

	docStore := store.NewDocumentStore(docs)
	instance, err := e.build(ctx, settings, docStore, progress)
	if err != nil {
		return indexing.BuildReport{}, err
	}

	e.mu.Lock()
	e.indexes[settings.Name] = instance
	e.mu.Unlock()

	e.log.Info("index created", "index", settings.Name, "documents", docStore.Len())
	return instance.Report(), nil
}

// DeleteIndex removes an index from memory.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; !exists {
		return errors.NewIndexNotFoundError(name)
	}
	delete(e.indexes, name)

	e.log.Info("index deleted", "index", name)
	return nil
}

func (e *Engine) build(ctx context.Context, settings config.IndexSettings, docStore *store.DocumentStore, progress func(done, total int)) (*IndexInstance, error) {
	idx, report, err := e.indexer.Build(ctx, docStore.Documents(), settings, progress)
	if err != nil {
		return nil, err
	}
	return newIndexInstance(idx, docStore, report, e.metrics)
}

// reserve claims name for a build so concurrent creates of the same name fail fast.
func (e *Engine) reserve(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; exists {
		return errors.NewIndexAlreadyExistsError(name)
	}
	if _, building := e.building[name]; building {
		return errors.NewIndexAlreadyExistsError(name)
	}
	e.building[name] = struct{}{}
	return nil
}

func (e *Engine) release(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.building, name)
}

func prepareSettings(settings config.IndexSettings) (config.IndexSettings, error) {
	if settings.Name == "" {
		return settings, errors.NewValidationError("name", "index name cannot be empty")
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}
