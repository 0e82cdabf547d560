package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-lsh-search/model"
)

var validJobStatuses = map[model.JobStatus]struct{}{
	model.JobStatusPending:   {},
	model.JobStatusRunning:   {},
	model.JobStatusCompleted: {},
	model.JobStatusFailed:    {},
	model.JobStatusCancelled: {},
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	job, err := api.engine.GetJob(c.Param("jobId"))
	if err != nil {
		SendEngineError(c, "get job", err)
		return
	}

	response := gin.H{"job": job}
	if job.Progress != nil {
		response["progress_percentage"] = job.Progress.GetProgressPercentage()
	}
	c.JSON(http.StatusOK, response)
}

// ListJobsHandler handles requests to list jobs for an index, optionally by ?status=
func (api *API) ListJobsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if _, err := api.engine.GetIndex(indexName); err != nil {
		// Jobs of a failed first build are still listed.
		if len(api.engine.ListJobs(indexName, nil)) == 0 {
			SendEngineError(c, "list jobs", err)
			return
		}
	}

	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		if _, ok := validJobStatuses[status]; !ok {
			result := &ValidationResult{Valid: true}
			result.AddError("status", "Unknown job status '"+statusParam+"'")
			SendValidationError(c, result)
			return
		}
		statusFilter = &status
	}

	jobs := api.engine.ListJobs(indexName, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":       jobs,
		"index_name": indexName,
		"total":      len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	metrics := api.engine.GetJobMetrics()
	c.JSON(http.StatusOK, gin.H{
		"metrics":          metrics,
		"success_rate":     metrics.SuccessRate,
		"current_workload": metrics.CurrentWorkload,
	})
}
