package jobs

import (
	"maps"
	"sync"
	"time"

	"github.com/gcbaptista/go-lsh-search/model"
)

// executionWindow bounds how many recent durations are kept per job type.
const executionWindow = 100

// JobMetricsData is a point-in-time copy of JobMetrics, safe to serialize.
type JobMetricsData struct {
	JobsCreated          int64                           `json:"jobs_created"`
	JobsCompleted        int64                           `json:"jobs_completed"`
	JobsFailed           int64                           `json:"jobs_failed"`
	SuccessRate          float64                         `json:"success_rate"`
	CurrentWorkload      int64                           `json:"current_workload"`
	AverageExecutionTime time.Duration                   `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]time.Duration `json:"average_by_type_ns"`
	JobsByType           map[model.JobType]int64         `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64       `json:"jobs_by_status"`
	LastUpdated          time.Time                       `json:"last_updated"`
}

// JobMetrics accumulates job counters in process memory.
type JobMetrics struct {
	mu           sync.RWMutex
	created      int64
	completed    int64
	failed       int64
	totalTime    time.Duration
	byType       map[model.JobType]int64
	byStatus     map[model.JobStatus]int64
	recentByType map[model.JobType][]time.Duration
	lastUpdated  time.Time
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		byType:       make(map[model.JobType]int64),
		byStatus:     make(map[model.JobStatus]int64),
		recentByType: make(map[model.JobType][]time.Duration),
		lastUpdated:  time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status counters.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.byStatus[oldStatus] > 0 {
		m.byStatus[oldStatus]--
	}
	m.byStatus[newStatus]++
	m.lastUpdated = time.Now()
}

// RecordJobCompleted records a successful run and its duration.
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalTime += executionTime

	recent := append(m.recentByType[jobType], executionTime)
	if len(recent) > executionWindow {
		recent = recent[len(recent)-executionWindow:]
	}
	m.recentByType[jobType] = recent
	m.lastUpdated = time.Now()
}

// RecordJobFailed counts a failed run.
func (m *JobMetrics) RecordJobFailed(_ model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

// GetMetrics returns a snapshot.
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := JobMetricsData{
		JobsCreated:     m.created,
		JobsCompleted:   m.completed,
		JobsFailed:      m.failed,
		SuccessRate:     1.0,
		CurrentWorkload: m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		AverageByType:   make(map[model.JobType]time.Duration, len(m.recentByType)),
		JobsByType:      maps.Clone(m.byType),
		JobsByStatus:    maps.Clone(m.byStatus),
		LastUpdated:     m.lastUpdated,
	}

	if m.completed > 0 {
		data.AverageExecutionTime = m.totalTime / time.Duration(m.completed)
	}
	if finished := m.completed + m.failed; finished > 0 {
		data.SuccessRate = float64(m.completed) / float64(finished)
	}
	for jobType, times := range m.recentByType {
		var total time.Duration
		for _, t := range times {
			total += t
		}
		data.AverageByType[jobType] = total / time.Duration(len(times))
	}
	return data
}
