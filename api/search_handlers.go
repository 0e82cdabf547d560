package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-lsh-search/services"
)

// SearchRequest is the body of POST /indexes/:indexName/_search. Exactly one of
// Query and DocID is expected; DocID searches with an indexed document's text.
type SearchRequest struct {
	Query string `json:"query"`
	DocID *int   `json:"doc_id,omitempty"`
	TopN  *int   `json:"top_n,omitempty"` // Optional: override the index default
}

// MultiSearchRequest represents the JSON request for multi-search
type MultiSearchRequest struct {
	Queries []services.NamedSearchQuery `json:"queries" binding:"required"`
	TopN    *int                        `json:"top_n,omitempty"`
}

// SearchHandler ranks the indexed documents most similar to a query text.
func (api *API) SearchHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if result := ValidateIndexName(indexName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	result := &ValidationResult{Valid: true}
	if req.Query == "" && req.DocID == nil {
		result.AddError("query", "Either query or doc_id is required")
	}
	if req.Query != "" && req.DocID != nil {
		result.AddError("query", "query and doc_id are mutually exclusive")
	}
	if topNResult := ValidateTopN(req.TopN); topNResult.HasErrors() {
		result.Errors = append(result.Errors, topNResult.Errors...)
	}
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	searchResult, err := indexAccessor.Execute(c.Request.Context(), services.SearchQuery{
		Query: req.Query,
		DocID: req.DocID,
		TopN:  req.TopN,
	})
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, searchResult)
}

// SimilarDocumentsHandler ranks the documents most similar to an indexed one.
func (api *API) SimilarDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	docID, result := ValidateDocumentID(c.Param("docId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	topN, result := ParseOptionalInt(c, "top_n")
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateTopN(topN); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	searchResult, err := indexAccessor.Execute(c.Request.Context(), services.SearchQuery{DocID: &docID, TopN: topN})
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, searchResult)
}

// MultiSearchHandler runs several named queries against one index in parallel.
func (api *API) MultiSearchHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	var req MultiSearchRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateTopN(req.TopN); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	multiResult, err := indexAccessor.MultiSearch(c.Request.Context(), services.MultiSearchQuery{
		Queries: req.Queries,
		TopN:    req.TopN,
	})
	if err != nil {
		SendEngineError(c, "multi search", err)
		return
	}

	c.JSON(http.StatusOK, multiResult)
}

// DuplicatesHandler lists near-duplicate pairs within the index at or above ?threshold=.
func (api *API) DuplicatesHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	threshold, result := ParseThreshold(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	pairs, err := indexAccessor.FindDuplicates(c.Request.Context(), threshold)
	if err != nil {
		SendEngineError(c, "find duplicates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pairs":     pairs,
		"total":     len(pairs),
		"threshold": threshold,
	})
}
