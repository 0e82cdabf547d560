package jobs

import (
	"context"
	stdErrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
	"github.com/gcbaptista/go-lsh-search/model"
)

func waitFor(t *testing.T, manager *Manager, jobID string) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job, err := manager.Wait(ctx, jobID)
	if err != nil {
		t.Fatalf("job %s did not finish: %v", jobID, err)
	}
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "test-index", map[string]string{
		"documents": "3",
	})

	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}

	if job.Type != model.JobTypeBuildIndex {
		t.Errorf("Expected job type %s, got %s", model.JobTypeBuildIndex, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.IndexName != "test-index" {
		t.Errorf("Expected index name 'test-index', got %s", job.IndexName)
	}
	if job.Metadata["documents"] != "3" {
		t.Errorf("Expected metadata to be kept, got %v", job.Metadata)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "test-index", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job model.Job) error {
		if job.Status != model.JobStatusRunning {
			t.Errorf("Expected job to be running inside JobFunc, got %s", job.Status)
		}
		manager.UpdateJobProgress(jobID, 50, 100, "signing documents")
		manager.UpdateJobProgress(jobID, 100, 100, "done")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitFor(t, manager, jobID)
	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.Progress == nil || job.Progress.GetProgressPercentage() != 100 {
		t.Errorf("Expected progress 100%%, got %+v", job.Progress)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion timestamps")
	}
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeRebuildIndex, "idx", nil, func(ctx context.Context, job model.Job) error {
		return stdErrors.New("signature_length 10 is not a multiple of band_width 3")
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	job := waitFor(t, manager, jobID)
	if job.Status != model.JobStatusFailed {
		t.Fatalf("Expected failed job, got %s", job.Status)
	}
	if job.Error == "" {
		t.Error("Expected failure message on job")
	}

	metrics := manager.GetMetrics()
	if metrics.JobsFailed != 1 {
		t.Errorf("Expected 1 failed job, got %d", metrics.JobsFailed)
	}
	if metrics.SuccessRate != 0 {
		t.Errorf("Expected success rate 0, got %f", metrics.SuccessRate)
	}
}

func TestJobManager_ExecuteTwice(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeBuildIndex, "idx", nil, func(ctx context.Context, job model.Job) error {
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, manager, jobID)

	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job model.Job) error { return nil }); err == nil {
		t.Error("Expected error executing a job that is no longer pending")
	}
}

func TestJobManager_UnknownJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	if !stdErrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}

	err = manager.ExecuteJob("missing", func(ctx context.Context, job model.Job) error { return nil })
	if !stdErrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeBuildIndex, "a", nil)
	time.Sleep(time.Millisecond)
	second := manager.CreateJob(model.JobTypeRebuildIndex, "a", nil)
	manager.CreateJob(model.JobTypeBuildIndex, "b", nil)

	jobs := manager.ListJobs("a", nil)
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs for index a, got %d", len(jobs))
	}
	if jobs[0].ID != first || jobs[1].ID != second {
		t.Error("Expected jobs ordered by creation time")
	}

	if all := manager.ListJobs("", nil); len(all) != 3 {
		t.Errorf("Expected 3 jobs overall, got %d", len(all))
	}

	submitted, err := manager.Submit(model.JobTypeBuildIndex, "b", nil, func(ctx context.Context, job model.Job) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, manager, submitted)

	pending := model.JobStatusPending
	if got := manager.ListJobs("", &pending); len(got) != 3 {
		t.Errorf("Expected 3 pending jobs, got %d", len(got))
	}
}

func TestJobManager_WorkerLimit(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	var running, peak atomic.Int32
	ids := make([]string, 0, 4)
	for range 4 {
		id, err := manager.Submit(model.JobTypeBuildIndex, "idx", nil, func(ctx context.Context, job model.Job) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		if job := waitFor(t, manager, id); job.Status != model.JobStatusCompleted {
			t.Errorf("job %s ended as %s", id, job.Status)
		}
	}
	if peak.Load() != 1 {
		t.Errorf("Expected at most 1 concurrent job, saw %d", peak.Load())
	}
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1)

	started := make(chan struct{})
	jobID, err := manager.Submit(model.JobTypeBuildIndex, "idx", nil, func(ctx context.Context, job model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatal(err)
	}

	<-started
	manager.Stop()
	manager.Stop()

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected cancelled job, got %s", job.Status)
	}

	if _, err := manager.Submit(model.JobTypeBuildIndex, "idx", nil, func(ctx context.Context, job model.Job) error { return nil }); err == nil {
		t.Error("Expected submit after Stop to fail")
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	jobID, err := manager.Submit(model.JobTypeDeleteIndex, "idx", nil, func(ctx context.Context, job model.Job) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, manager, jobID)
	pendingID := manager.CreateJob(model.JobTypeBuildIndex, "idx", nil)

	if cleaned := manager.CleanupOldJobs(time.Hour); cleaned != 0 {
		t.Errorf("Expected nothing cleaned for a fresh job, got %d", cleaned)
	}
	if cleaned := manager.CleanupOldJobs(-time.Second); cleaned != 1 {
		t.Errorf("Expected 1 job cleaned, got %d", cleaned)
	}
	if _, err := manager.GetJob(pendingID); err != nil {
		t.Error("Pending jobs must survive cleanup")
	}
}

func TestJobMetrics(t *testing.T) {
	metrics := NewJobMetrics()

	metrics.RecordJobCreated(model.JobTypeBuildIndex)
	metrics.RecordJobStatusChange(model.JobStatusPending, model.JobStatusRunning)
	metrics.RecordJobCompleted(model.JobTypeBuildIndex, 20*time.Millisecond)
	metrics.RecordJobStatusChange(model.JobStatusRunning, model.JobStatusCompleted)

	metrics.RecordJobCreated(model.JobTypeBuildIndex)
	metrics.RecordJobCompleted(model.JobTypeBuildIndex, 40*time.Millisecond)

	data := metrics.GetMetrics()
	if data.JobsCreated != 2 || data.JobsCompleted != 2 {
		t.Errorf("unexpected counters: %+v", data)
	}
	if data.AverageExecutionTime != 30*time.Millisecond {
		t.Errorf("Expected 30ms average, got %v", data.AverageExecutionTime)
	}
	if data.AverageByType[model.JobTypeBuildIndex] != 30*time.Millisecond {
		t.Errorf("Expected 30ms build average, got %v", data.AverageByType[model.JobTypeBuildIndex])
	}
	if data.SuccessRate != 1 {
		t.Errorf("Expected success rate 1, got %f", data.SuccessRate)
	}
	if data.JobsByStatus[model.JobStatusCompleted] != 1 {
		t.Errorf("Expected 1 completed status, got %d", data.JobsByStatus[model.JobStatusCompleted])
	}
	if data.CurrentWorkload != 1 {
		t.Errorf("Expected workload 1 (one job still pending), got %d", data.CurrentWorkload)
	}
}
