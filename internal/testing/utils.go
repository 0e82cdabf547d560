// Package testing provides utilities and helpers for testing the LSH search engine.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/engine"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/model"
	"github.com/gcbaptista/go-lsh-search/services"
)

// SampleTexts is a small corpus: 0 and 1 are identical, 2 is a light edit of
// them and 5 is too short for any shingle.
var SampleTexts = []string{
	"the quick brown fox jumps over the lazy dog",
	"the quick brown fox jumps over the lazy dog",
	"the quick brown fox jumped over the lazy dogs",
	"lorem ipsum dolor sit amet consectetur adipiscing",
	"pack my box with five dozen liquor jugs",
	"ab",
}

// CreateTestEngine creates an engine that is closed when the test ends.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	eng := engine.NewEngine(engine.Options{
		JobWorkers: 2,
		Build:      indexing.BuildOptions{Workers: 4},
	})
	t.Cleanup(eng.Close)
	return eng
}

// TestSettings returns settings with room for several bands per document.
func TestSettings(indexName string) config.IndexSettings {
	return config.IndexSettings{
		Name:            indexName,
		ShingleSize:     3,
		SignatureLength: 20,
		BandWidth:       2,
		TopN:            5,
	}
}

// CreateTestIndex builds an index over texts (SampleTexts when none are given).
func CreateTestIndex(t *testing.T, eng *engine.Engine, indexName string, texts ...string) config.IndexSettings {
	t.Helper()

	if len(texts) == 0 {
		texts = SampleTexts
	}
	settings := TestSettings(indexName)

	_, err := eng.CreateIndex(context.Background(), settings, model.NewCorpus(texts...))
	require.NoError(t, err, "Failed to create test index")

	return settings
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJob polls a job until it reaches a terminal status or times out.
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()

	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.IsFinished() {
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s", jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
			}
		}
	}
}

// WaitForJobCompletion waits for a job and fails the test unless it completed.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string) *model.Job {
	t.Helper()

	job := WaitForJob(t, jobManager, jobID, DefaultJobPollingOptions())
	require.Equal(t, model.JobStatusCompleted, job.Status, "job %s ended with error %q", jobID, job.Error)
	return job
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedIndex string) {
	t.Helper()

	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedIndex, job.IndexName, "Job index name should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// AsyncOperationTest represents a test case for async operations
type AsyncOperationTest struct {
	Name            string
	SetupFunc       func(t *testing.T, eng *engine.Engine) string                   // Returns index name
	OperationFunc   func(t *testing.T, eng *engine.Engine, indexName string) string // Returns job ID
	ValidateFunc    func(t *testing.T, eng *engine.Engine, indexName string, job *model.Job)
	ExpectedJobType model.JobType
}

// RunAsyncOperationTests runs a suite of async operation tests
func RunAsyncOperationTests(t *testing.T, tests []AsyncOperationTest) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			eng := CreateTestEngine(t)

			indexName := tt.SetupFunc(t, eng)

			jobID := tt.OperationFunc(t, eng, indexName)
			require.NotEmpty(t, jobID, "Job ID should not be empty")

			job := WaitForJob(t, eng, jobID, DefaultJobPollingOptions())
			AssertJobCompleted(t, job, tt.ExpectedJobType, indexName)

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, eng, indexName, job)
			}
		})
	}
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name          string
	Query         services.SearchQuery
	ExpectedCount int // -1 to skip the count check
	ExpectedFirst int // Expected first hit document ID, -1 to skip
	ValidateFunc  func(t *testing.T, results *services.SearchResult)
}

// RunSearchTests runs a suite of search tests against an index
func RunSearchTests(t *testing.T, indexAccessor services.IndexAccessor, tests []SearchTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			results, err := indexAccessor.Execute(context.Background(), tt.Query)
			require.NoError(t, err, "Search should not fail")

			if tt.ExpectedCount >= 0 {
				assert.Len(t, results.Hits, tt.ExpectedCount, "Result count should match")
			}

			if tt.ExpectedFirst >= 0 && len(results.Hits) > 0 {
				assert.Equal(t, tt.ExpectedFirst, results.Hits[0].DocID, "First result should match expected")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, &results)
			}
		})
	}
}
