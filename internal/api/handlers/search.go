package handlers

import (
	"net/http"

	"github.com/rohits-web03/insurguide/internal/models"
	"github.com/rohits-web03/insurguide/internal/utils"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 10000
)

type IndexDocumentRequest struct {
	Index    string         `json:"index"`
	Document map[string]any `json:"document"`
	DocID    string         `json:"doc_id,omitempty"`
}

type SearchRequest struct {
	Index string         `json:"index"`
	Query map[string]any `json:"query"`
	Size  *int           `json:"size,omitempty"`
	From  *int           `json:"from_,omitempty"`
}

type CreateIndexRequest struct {
	Index    string         `json:"index"`
	Mappings map[string]any `json:"mappings,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

type DeleteDocumentsRequest struct {
	Index string         `json:"index"`
	IDs   []string       `json:"ids,omitempty"`
	Query map[string]any `json:"query,omitempty"`
}

// POST /api/es/index
// IndexDocument godoc
// @Summary Index a document
// @Tags Elasticsearch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IndexDocumentRequest true "Document"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/index [post]
func (h *Handler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	var input IndexDocumentRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if input.Index == "" || input.Document == nil {
		badRequest(w, "index and document are required")
		return
	}

	ids, err := h.Search.Put(r.Context(), input.Index, []models.Record{{
		ID:     input.DocID,
		Fields: input.Document,
	}})
	if err != nil {
		h.gatewayError(w, h.Search, "Document indexing", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Document indexed successfully",
		Data:    map[string]any{"id": ids[0]},
	})
}

// POST /api/es/search
// SearchDocuments godoc
// @Summary Search an index
// @Tags Elasticsearch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SearchRequest true "Query DSL, size and offset"
// @Success 200 {object} utils.Payload{data=models.QueryResult}
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/search [post]
func (h *Handler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var input SearchRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if input.Index == "" {
		badRequest(w, "index is required")
		return
	}

	size, from := defaultSearchSize, 0
	if input.Size != nil {
		size = *input.Size
	}
	if input.From != nil {
		from = *input.From
	}
	if size < 0 || size > maxSearchSize || from < 0 {
		badRequest(w, "size must be between 0 and 10000 and from_ must not be negative")
		return
	}

	result, err := h.Search.Query(r.Context(), input.Index, models.Query{
		Criteria: input.Query,
		Limit:    size,
		Offset:   from,
	})
	if err != nil {
		h.gatewayError(w, h.Search, "Search", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Search completed",
		Data:    result,
	})
}

// POST /api/es/create-index
// CreateIndex godoc
// @Summary Create an index if it does not exist
// @Tags Elasticsearch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateIndexRequest true "Index name, mappings and settings"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/create-index [post]
func (h *Handler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var input CreateIndexRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if input.Index == "" {
		badRequest(w, "index is required")
		return
	}

	schema := map[string]any{}
	if input.Mappings != nil {
		schema["mappings"] = input.Mappings
	}
	if input.Settings != nil {
		schema["settings"] = input.Settings
	}
	if err := h.Search.EnsureCollection(r.Context(), input.Index, schema); err != nil {
		h.gatewayError(w, h.Search, "Index creation", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Index created successfully",
	})
}

// DELETE /api/es/delete-index/{index_name}
// DeleteIndex godoc
// @Summary Delete an index if it exists
// @Tags Elasticsearch
// @Produce json
// @Security BearerAuth
// @Param index_name path string true "Index name"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/delete-index/{index_name} [delete]
func (h *Handler) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	index := r.PathValue("index_name")
	if index == "" {
		badRequest(w, "index name is required")
		return
	}
	if err := h.Search.DropCollection(r.Context(), index); err != nil {
		h.gatewayError(w, h.Search, "Index deletion", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Index deleted successfully",
	})
}

// DELETE /api/es/delete
// DeleteSearchDocuments godoc
// @Summary Delete documents by id or query
// @Tags Elasticsearch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DeleteDocumentsRequest true "Index plus ids and/or query"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/delete [delete]
func (h *Handler) DeleteSearchDocuments(w http.ResponseWriter, r *http.Request) {
	var input DeleteDocumentsRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if input.Index == "" || (len(input.IDs) == 0 && len(input.Query) == 0) {
		badRequest(w, "index and either ids or query are required")
		return
	}

	if err := h.Search.Remove(r.Context(), input.Index, input.IDs, input.Query); err != nil {
		h.gatewayError(w, h.Search, "Document deletion", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Documents deleted successfully",
	})
}

// GET /api/es/health
// SearchHealth godoc
// @Summary Elasticsearch cluster health
// @Tags Elasticsearch
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/es/health [get]
func (h *Handler) SearchHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.Search.Health(r.Context())
	if err != nil {
		h.gatewayError(w, h.Search, "Health check", err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Cluster health",
		Data:    health,
	})
}
