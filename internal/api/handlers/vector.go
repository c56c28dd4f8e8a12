package handlers

import (
	"net/http"

	"github.com/rohits-web03/insurguide/internal/models"
	"github.com/rohits-web03/insurguide/internal/utils"
)

const (
	defaultResults = 5
	maxResults     = 100
)

type AddDocumentsRequest struct {
	Collection string           `json:"collection,omitempty"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas,omitempty"`
	IDs        []string         `json:"ids,omitempty"`
	Embeddings [][]float32      `json:"embeddings,omitempty"`
}

type QueryDocumentsRequest struct {
	Collection      string         `json:"collection,omitempty"`
	QueryTexts      []string       `json:"query_texts,omitempty"`
	QueryEmbeddings [][]float32    `json:"query_embeddings,omitempty"`
	NResults        *int           `json:"n_results,omitempty"`
	Offset          int            `json:"offset,omitempty"`
	Where           map[string]any `json:"where,omitempty"`
}

type RemoveDocumentsRequest struct {
	Collection string         `json:"collection,omitempty"`
	IDs        []string       `json:"ids,omitempty"`
	Where      map[string]any `json:"where,omitempty"`
}

type CreateCollectionRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *Handler) collection(name string) string {
	if name == "" {
		return h.VectorCollection
	}
	return name
}

// POST /api/vector/add
// AddDocuments godoc
// @Summary Add documents to the vector store
// @Description Documents are embedded by the configured provider unless embeddings are supplied.
// @Tags Vector
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddDocumentsRequest true "Documents"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/vector/add [post]
func (h *Handler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var input AddDocumentsRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	n := len(input.Documents)
	switch {
	case n == 0:
		badRequest(w, "documents are required")
		return
	case input.Metadatas != nil && len(input.Metadatas) != n,
		input.IDs != nil && len(input.IDs) != n,
		input.Embeddings != nil && len(input.Embeddings) != n:
		badRequest(w, "metadatas, ids and embeddings must match the number of documents")
		return
	}

	records := make([]models.Record, n)
	for i, doc := range input.Documents {
		records[i].Text = doc
		if input.Metadatas != nil {
			records[i].Fields = input.Metadatas[i]
		}
		if input.IDs != nil {
			records[i].ID = input.IDs[i]
		}
		if input.Embeddings != nil {
			records[i].Embedding = input.Embeddings[i]
		}
	}

	ids, err := h.Vector.Put(r.Context(), h.collection(input.Collection), records)
	if err != nil {
		h.gatewayError(w, h.Vector, "Adding documents", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Documents added successfully",
		Data: map[string]any{
			"count": len(ids),
			"ids":   ids,
		},
	})
}

// POST /api/vector/query
// QueryDocuments godoc
// @Summary Similarity search in the vector store
// @Tags Vector
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QueryDocumentsRequest true "Query texts or embeddings, result count and where filter"
// @Success 200 {object} utils.Payload{data=models.QueryResult}
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/vector/query [post]
func (h *Handler) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	var input QueryDocumentsRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	limit := defaultResults
	if input.NResults != nil {
		limit = *input.NResults
	}
	if limit < 1 || limit > maxResults || input.Offset < 0 {
		badRequest(w, "n_results must be between 1 and 100 and offset must not be negative")
		return
	}
	if len(input.QueryTexts) == 0 && len(input.QueryEmbeddings) == 0 && len(input.Where) == 0 {
		badRequest(w, "query_texts, query_embeddings or where is required")
		return
	}

	result, err := h.Vector.Query(r.Context(), h.collection(input.Collection), models.Query{
		Criteria:   input.Where,
		Texts:      input.QueryTexts,
		Embeddings: input.QueryEmbeddings,
		Limit:      limit,
		Offset:     input.Offset,
	})
	if err != nil {
		h.gatewayError(w, h.Vector, "Query", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Query completed",
		Data:    result,
	})
}

// DELETE /api/vector/delete
// RemoveDocuments godoc
// @Summary Delete documents from the vector store
// @Tags Vector
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RemoveDocumentsRequest true "ids and/or where filter"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/vector/delete [delete]
func (h *Handler) RemoveDocuments(w http.ResponseWriter, r *http.Request) {
	var input RemoveDocumentsRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if len(input.IDs) == 0 && len(input.Where) == 0 {
		badRequest(w, "ids or where is required")
		return
	}

	if err := h.Vector.Remove(r.Context(), h.collection(input.Collection), input.IDs, input.Where); err != nil {
		h.gatewayError(w, h.Vector, "Document deletion", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Documents deleted successfully",
	})
}

// POST /api/vector/create-collection
// CreateCollection godoc
// @Summary Create a collection if it does not exist
// @Tags Vector
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCollectionRequest true "Collection name and metadata"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/vector/create-collection [post]
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var input CreateCollectionRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}
	if input.Name == "" {
		badRequest(w, "name is required")
		return
	}

	if err := h.Vector.EnsureCollection(r.Context(), input.Name, input.Metadata); err != nil {
		h.gatewayError(w, h.Vector, "Collection creation", err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Collection ready",
	})
}

// GET /api/vector/health
// VectorHealth godoc
// @Summary Vector store heartbeat
// @Tags Vector
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/vector/health [get]
func (h *Handler) VectorHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.Vector.Health(r.Context())
	if err != nil {
		h.gatewayError(w, h.Vector, "Health check", err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Vector store heartbeat",
		Data:    health,
	})
}
