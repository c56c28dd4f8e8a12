package handlers

import (
	"errors"
	"net/http"

	"github.com/rohits-web03/insurguide/internal/api/services"
	"github.com/rohits-web03/insurguide/internal/repositories"
	"github.com/rohits-web03/insurguide/internal/utils"
)

type ChatRequest struct {
	Message string          `json:"message"`
	History []services.Turn `json:"history,omitempty"`
}

// POST /api/chat
// AskAdvisor godoc
// @Summary Ask the insurance advisor model
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChatRequest true "Message and previous turns"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 500 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/chat [post]
func (h *Handler) AskAdvisor(w http.ResponseWriter, r *http.Request) {
	var input ChatRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	reply, err := h.Chat.Reply(r.Context(), input.Message, input.History)
	var inputErr *services.InputError
	switch {
	case err == nil:
	case errors.As(err, &inputErr):
		badRequest(w, inputErr.Reason)
		return
	case errors.Is(err, services.ErrChatDisabled):
		utils.Fail(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	case errors.Is(err, repositories.ErrServiceUnavailable):
		h.Log.WithError(err).Warn("language model unavailable")
		utils.Fail(w, http.StatusServiceUnavailable, "Language model is unavailable")
		return
	default:
		h.Log.WithError(err).Error("chat")
		utils.Fail(w, http.StatusInternalServerError, "Chat failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Reply generated",
		Data:    map[string]string{"reply": reply},
	})
}
