package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/model"
)

// RebuildIndex rebuilds an existing index over the same documents with new
// settings and swaps it in. Searches keep using the old instance until the swap.
func (e *Engine) RebuildIndex(ctx context.Context, name string, newSettings config.IndexSettings) (indexing.BuildReport, error) {
	return e.rebuildIndex(ctx, name, newSettings, nil)
}

func (e *Engine) rebuildIndex(ctx context.Context, name string, newSettings config.IndexSettings, progress func(done, total int)) (indexing.BuildReport, error) {
	current, newSettings, err := e.resolveUpdate(name, newSettings)
	if err != nil {
		return indexing.BuildReport{}, err
	}

	instance, err := e.build(ctx, newSettings, current.docs, progress)
	if err != nil {
		return indexing.BuildReport{}, err
	}
	if err := e.swap(name, current, instance); err != nil {
		return indexing.BuildReport{}, err
	}

	e.log.Info("index rebuilt", "index", name, "documents", current.docs.Len())
	return instance.Report(), nil
}

// UpdateIndexSettings applies new settings asynchronously and returns the job id.
// Query-time changes (top_n, max_candidates) reuse the built tables; anything
// else triggers a full rebuild.
func (e *Engine) UpdateIndexSettings(name string, newSettings config.IndexSettings) (string, error) {
	current, newSettings, err := e.resolveUpdate(name, newSettings)
	if err != nil {
		return "", err
	}

	if requiresRebuild(current.Settings(), newSettings) {
		return e.RebuildIndexAsync(name, newSettings)
	}

	jobID, err := e.jobManager.Submit(model.JobTypeUpdateSettings, name, map[string]string{
		"operation": "query_settings_update",
	}, func(ctx context.Context, job model.Job) error {
		return e.applyQuerySettings(name, newSettings)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start settings update job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) applyQuerySettings(name string, newSettings config.IndexSettings) error {
	current, err := e.instance(name)
	if err != nil {
		return err
	}

	instance, err := newIndexInstance(current.Index().WithQuerySettings(newSettings), current.docs, current.report, e.metrics)
	if err != nil {
		return err
	}
	instance.builtAt = current.builtAt

	if err := e.swap(name, current, instance); err != nil {
		return err
	}
	e.log.Info("query settings updated", "index", name, "top_n", newSettings.TopN, "max_candidates", newSettings.MaxCandidates)
	return nil
}

// resolveUpdate looks up the current instance and completes newSettings.
func (e *Engine) resolveUpdate(name string, newSettings config.IndexSettings) (*IndexInstance, config.IndexSettings, error) {
	current, err := e.instance(name)
	if err != nil {
		return nil, newSettings, err
	}

	if newSettings.Name != "" && newSettings.Name != name {
		return nil, newSettings, errors.NewValidationError("name",
			fmt.Sprintf("cannot change index name from '%s' to '%s' during settings update", name, newSettings.Name))
	}
	newSettings.Name = name

	newSettings, err = prepareSettings(newSettings)
	if err != nil {
		return nil, newSettings, err
	}
	return current, newSettings, nil
}

// swap replaces current with next unless the index was deleted or replaced meanwhile.
func (e *Engine) swap(name string, current, next *IndexInstance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, exists := e.indexes[name]
	if !exists {
		return errors.NewIndexNotFoundError(name)
	}
	if existing != current {
		return fmt.Errorf("index '%s' was modified concurrently", name)
	}
	e.indexes[name] = next
	return nil
}

// requiresRebuild reports whether a settings change touches the shingles,
// signatures or band layout.
func requiresRebuild(oldSettings, newSettings config.IndexSettings) bool {
	return oldSettings.ShingleSize != newSettings.ShingleSize ||
		oldSettings.SignatureLength != newSettings.SignatureLength ||
		oldSettings.BandWidth != newSettings.BandWidth
}
