package handlers

import (
	"fmt"
	"net/http"

	"github.com/rohits-web03/insurguide/internal/utils"
)

// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Welcome to %s", h.AppName),
		"version": h.AppVersion,
		"docs":    "/docs/",
	})
}

// GET /health
// Health godoc
// @Summary Process liveness
// @Description Does not probe Elasticsearch, the vector store or the database.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
