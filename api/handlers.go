// Package api exposes the LSH search engine over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/jobs"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
	"github.com/gcbaptista/go-lsh-search/services"
)

// Backend is what the handlers need from the engine.
type Backend interface {
	services.AsyncIndexManager
	services.JobManager
	UpdateIndexSettings(name string, settings config.IndexSettings) (string, error)
	DeleteIndexAsync(name string) (string, error)
	GetJobMetrics() jobs.JobMetricsData
}

// API holds dependencies for API handlers, primarily the engine.
type API struct {
	engine    Backend
	metrics   *metrics.Metrics
	startedAt time.Time
}

// NewAPI creates a new API handler structure. m may be nil.
func NewAPI(engine Backend, m *metrics.Metrics) *API {
	return &API{
		engine:    engine,
		metrics:   m,
		startedAt: time.Now(),
	}
}

// SetupRoutes defines all the API routes for the LSH search engine.
func SetupRoutes(router *gin.Engine, engine Backend, m *metrics.Metrics) {
	apiHandler := NewAPI(engine, m)

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Job status by ID
	}

	// Index management routes
	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("", apiHandler.CreateIndexHandler)                              // Build a new index
		indexRoutes.GET("", apiHandler.ListIndexesHandler)                               // List all indexes
		indexRoutes.GET("/:indexName", apiHandler.GetIndexHandler)                       // Settings, stats and last build
		indexRoutes.DELETE("/:indexName", apiHandler.DeleteIndexHandler)                 // Delete an index
		indexRoutes.PATCH("/:indexName/settings", apiHandler.UpdateIndexSettingsHandler) // Update settings, rebuilding if needed
		indexRoutes.GET("/:indexName/jobs", apiHandler.ListJobsHandler)                  // List jobs for an index

		docRoutes := indexRoutes.Group("/:indexName/documents")
		{
			docRoutes.GET("/:docId", apiHandler.GetDocumentHandler)
			docRoutes.GET("/:docId/_similar", apiHandler.SimilarDocumentsHandler)
		}

		indexRoutes.POST("/:indexName/_search", apiHandler.SearchHandler)
		indexRoutes.POST("/:indexName/_multi_search", apiHandler.MultiSearchHandler)
		indexRoutes.GET("/:indexName/_duplicates", apiHandler.DuplicatesHandler)
	}
}

// NewRouter builds a gin engine with the standard middleware stack and all routes.
func NewRouter(engine Backend, m *metrics.Metrics, cfg config.ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(MetricsMiddleware(m))
	router.Use(CORSMiddleware())
	if cfg.MaxRequestSize > 0 {
		router.Use(RequestSizeLimitMiddleware(cfg.MaxRequestSize))
	}

	SetupRoutes(router, engine, m)
	return router
}

// HealthCheckHandler provides a simple health check endpoint.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"indexes": len(api.engine.ListIndexes()),
		"uptime":  time.Since(api.startedAt).Round(time.Second).String(),
	})
}
