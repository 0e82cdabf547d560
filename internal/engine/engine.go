// Package engine manages named in-memory LSH indexes and their background builds.
package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/internal/jobs"
	"github.com/gcbaptista/go-lsh-search/internal/logger"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
	"github.com/gcbaptista/go-lsh-search/model"
	"github.com/gcbaptista/go-lsh-search/services"
)

const defaultJobWorkers = 2

// Options configures an Engine. The zero value is usable.
type Options struct {
	JobWorkers int
	Build      indexing.BuildOptions
	Metrics    *metrics.Metrics
}

// Engine manages multiple LSH indexes.
// It implements the services.AsyncIndexManager and services.JobManager interfaces.
type Engine struct {
	mu         sync.RWMutex
	indexes    map[string]*IndexInstance
	building   map[string]struct{} // names reserved by a create in progress
	indexer    *indexing.Service
	metrics    *metrics.Metrics
	jobManager *jobs.Manager
	log        *slog.Logger
}

// NewEngine creates an engine and starts its job manager. Call Close when done.
func NewEngine(opts Options) *Engine {
	workers := opts.JobWorkers
	if workers <= 0 {
		workers = defaultJobWorkers
	}
	if opts.Build.Workers <= 0 {
		opts.Build.Workers = indexing.DefaultBuildOptions().Workers
	}

	jobManager := jobs.NewManager(workers)
	jobManager.Start()

	return &Engine{
		indexes:    make(map[string]*IndexInstance),
		building:   make(map[string]struct{}),
		indexer:    indexing.NewService(opts.Metrics, opts.Build),
		metrics:    opts.Metrics,
		jobManager: jobManager,
		log:        logger.WithComponent("engine"),
	}
}

// FromConfig creates an engine from the application config.
func FromConfig(cfg *config.AppConfig, m *metrics.Metrics) *Engine {
	return NewEngine(Options{
		JobWorkers: cfg.Jobs.MaxWorkers,
		Build:      indexing.BuildOptions{Workers: cfg.Build.EffectiveWorkers()},
		Metrics:    m,
	})
}

// Close cancels running builds and stops the job manager.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// GetIndex retrieves an index by its name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	instance, err := e.instance(name)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// GetIndexSettings retrieves the settings for a specific index.
func (e *Engine) GetIndexSettings(name string) (config.IndexSettings, error) {
	instance, err := e.instance(name)
	if err != nil {
		return config.IndexSettings{}, err
	}
	return instance.Settings(), nil
}

// ListIndexes returns the names of all indexes, sorted.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetJob retrieves a job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs lists jobs for an index, optionally filtered by status.
func (e *Engine) ListJobs(indexName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(indexName, status)
}

// GetJobMetrics returns job performance counters.
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}

func (e *Engine) instance(name string) (*IndexInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return nil, errors.NewIndexNotFoundError(name)
	}
	return instance, nil
}
