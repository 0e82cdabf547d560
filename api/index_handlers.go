package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/internal/indexing"
	"github.com/gcbaptista/go-lsh-search/model"
)

// DocumentInput is one corpus entry in a create request: either a bare JSON
// string or an object with a name and text.
type DocumentInput struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts "text" as well as {"name": ..., "text": ...}.
func (d *DocumentInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.Text)
	}

	type plain DocumentInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("document must be a string or an object with a text field: %w", err)
	}
	*d = DocumentInput(p)
	return nil
}

// CreateIndexRequest is the body of POST /indexes. Zero parameters take the defaults.
type CreateIndexRequest struct {
	Name            string          `json:"name"`
	ShingleSize     int             `json:"shingle_size"`
	SignatureLength int             `json:"signature_length"`
	BandWidth       int             `json:"band_width"`
	TopN            *int            `json:"top_n,omitempty"`
	MaxCandidates   int             `json:"max_candidates,omitempty"`
	Documents       []DocumentInput `json:"documents"`
}

// Settings converts the request into index settings.
func (r *CreateIndexRequest) Settings() config.IndexSettings {
	settings := config.IndexSettings{
		Name:            r.Name,
		ShingleSize:     r.ShingleSize,
		SignatureLength: r.SignatureLength,
		BandWidth:       r.BandWidth,
		TopN:            config.DefaultTopN,
		MaxCandidates:   r.MaxCandidates,
	}
	if r.TopN != nil {
		settings.TopN = *r.TopN
	}
	return settings
}

// Corpus converts the request documents into a positional corpus.
func (r *CreateIndexRequest) Corpus() []model.Document {
	docs := make([]model.Document, len(r.Documents))
	for i, d := range r.Documents {
		docs[i] = model.Document{ID: i, Name: d.Name, Text: d.Text}
	}
	return docs
}

// BuildResponse is returned by a synchronous create.
type BuildResponse struct {
	Message   string                     `json:"message"`
	IndexName string                     `json:"index_name"`
	Documents int                        `json:"documents"`
	Indexed   int                        `json:"indexed"`
	Skipped   []indexing.SkippedDocument `json:"skipped"`
	TookMs    int64                      `json:"took_ms"`
}

func newBuildResponse(message string, report indexing.BuildReport) BuildResponse {
	return BuildResponse{
		Message:   message,
		IndexName: report.IndexName,
		Documents: report.Documents,
		Indexed:   report.Indexed,
		Skipped:   report.Skipped,
		TookMs:    report.Took.Milliseconds(),
	}
}

// CreateIndexHandler builds a new index from the documents in the request.
// With ?async=true the build runs as a job and the response is 202 with its id.
func (api *API) CreateIndexHandler(c *gin.Context) {
	var req CreateIndexRequest

	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if result := ValidateCreateIndexRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateTopN(req.TopN); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	settings := req.Settings()

	if c.Query("async") == "true" {
		jobID, err := api.engine.CreateIndexAsync(settings, req.Corpus())
		if err != nil {
			SendEngineError(c, "create index", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "accepted",
			"message": "Index creation started for '" + settings.Name + "'",
			"job_id":  jobID,
		})
		return
	}

	report, err := api.engine.CreateIndex(c.Request.Context(), settings, req.Corpus())
	if err != nil {
		SendEngineError(c, "create index", err)
		return
	}

	c.JSON(http.StatusCreated, newBuildResponse("Index '"+settings.Name+"' created successfully", report))
}

// ListIndexesHandler lists all available indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	names := api.engine.ListIndexes()
	c.JSON(http.StatusOK, gin.H{"indexes": names, "count": len(names)})
}

// GetIndexHandler returns an index's settings, bucket statistics and last build.
func (api *API) GetIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	response := gin.H{
		"settings": indexAccessor.Settings(),
		"stats":    indexAccessor.Stats(),
	}
	if reporter, ok := indexAccessor.(interface{ Report() indexing.BuildReport }); ok {
		response["last_build"] = newBuildResponse("", reporter.Report())
	}
	c.JSON(http.StatusOK, response)
}

// DeleteIndexHandler handles deleting an index. ?async=true runs it as a job.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if c.Query("async") == "true" {
		jobID, err := api.engine.DeleteIndexAsync(indexName)
		if err != nil {
			SendEngineError(c, "delete index", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "accepted",
			"message": "Index deletion started for '" + indexName + "'",
			"job_id":  jobID,
		})
		return
	}

	if err := api.engine.DeleteIndex(indexName); err != nil {
		SendEngineError(c, "delete index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index '" + indexName + "' deleted successfully"})
}

// IndexSettingsUpdate is the body of PATCH /indexes/:indexName/settings.
// Omitted fields keep their current value.
type IndexSettingsUpdate struct {
	ShingleSize     *int `json:"shingle_size,omitempty"`     // rebuild
	SignatureLength *int `json:"signature_length,omitempty"` // rebuild
	BandWidth       *int `json:"band_width,omitempty"`       // rebuild
	TopN            *int `json:"top_n,omitempty"`
	MaxCandidates   *int `json:"max_candidates,omitempty"`
}

// IsEmpty reports whether no field was provided.
func (u IndexSettingsUpdate) IsEmpty() bool {
	return u.ShingleSize == nil && u.SignatureLength == nil && u.BandWidth == nil &&
		u.TopN == nil && u.MaxCandidates == nil
}

// Apply overlays the provided fields onto settings.
func (u IndexSettingsUpdate) Apply(settings config.IndexSettings) config.IndexSettings {
	if u.ShingleSize != nil {
		settings.ShingleSize = *u.ShingleSize
	}
	if u.SignatureLength != nil {
		settings.SignatureLength = *u.SignatureLength
	}
	if u.BandWidth != nil {
		settings.BandWidth = *u.BandWidth
	}
	if u.TopN != nil {
		settings.TopN = *u.TopN
	}
	if u.MaxCandidates != nil {
		settings.MaxCandidates = *u.MaxCandidates
	}
	return settings
}

// UpdateIndexSettingsHandler applies a settings change as a background job.
// Build parameters trigger a full rebuild; top_n and max_candidates do not.
func (api *API) UpdateIndexSettingsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	current, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, "get index settings", err)
		return
	}

	var update IndexSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if update.IsEmpty() {
		c.JSON(http.StatusOK, gin.H{"message": "No settings changed", "settings": current})
		return
	}

	jobID, err := api.engine.UpdateIndexSettings(indexName, update.Apply(current))
	if err != nil {
		SendEngineError(c, "update index settings", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Settings update started for index '" + indexName + "'",
		"job_id":  jobID,
	})
}
