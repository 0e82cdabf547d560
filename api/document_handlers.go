package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDocumentHandler shows how one document was indexed: its text, shingle
// count, signature and band keys.
func (api *API) GetDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	docID, result := ValidateDocumentID(c.Param("docId"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, "get index", err)
		return
	}

	info, err := indexAccessor.Document(docID)
	if err != nil {
		SendEngineError(c, "get document", err)
		return
	}

	c.JSON(http.StatusOK, info)
}
