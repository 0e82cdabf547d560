package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/model"
)

// CreateIndexAsync validates the request and builds the index in a background job.
func (e *Engine) CreateIndexAsync(settings config.IndexSettings, docs []model.Document) (string, error) {
	settings, err := prepareSettings(settings)
	if err != nil {
		return "", err
	}

	e.mu.RLock()
	_, exists := e.indexes[settings.Name]
	e.mu.RUnlock()
	if exists {
		return "", errors.NewIndexAlreadyExistsError(settings.Name)
	}

	jobID, err := e.jobManager.Submit(model.JobTypeBuildIndex, settings.Name, map[string]string{
		"operation": "create_index",
		"documents": strconv.Itoa(len(docs)),
	}, func(ctx context.Context, job model.Job) error {
		_, err := e.createIndex(ctx, settings, docs, e.progressReporter(job.ID))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to start create index job: %w", err)
	}
	return jobID, nil
}

// RebuildIndexAsync rebuilds an index with new settings in a background job.
func (e *Engine) RebuildIndexAsync(name string, newSettings config.IndexSettings) (string, error) {
	if _, _, err := e.resolveUpdate(name, newSettings); err != nil {
		return "", err
	}

	jobID, err := e.jobManager.Submit(model.JobTypeRebuildIndex, name, map[string]string{
		"operation": "rebuild_index",
	}, func(ctx context.Context, job model.Job) error {
		_, err := e.rebuildIndex(ctx, name, newSettings, e.progressReporter(job.ID))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to start rebuild job: %w", err)
	}
	return jobID, nil
}

// DeleteIndexAsync deletes an index in a background job.
func (e *Engine) DeleteIndexAsync(name string) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	jobID, err := e.jobManager.Submit(model.JobTypeDeleteIndex, name, map[string]string{
		"operation": "delete_index",
	}, func(ctx context.Context, job model.Job) error {
		return e.DeleteIndex(name)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start delete index job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) progressReporter(jobID string) func(done, total int) {
	return func(done, total int) {
		e.jobManager.UpdateJobProgress(jobID, done, total, "signing documents")
	}
}
