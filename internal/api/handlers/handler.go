package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/insurguide/internal/api/services"
	"github.com/rohits-web03/insurguide/internal/repositories"
	"github.com/rohits-web03/insurguide/internal/utils"
)

// Handler holds the dependencies shared by every route. Gateways are always
// set; a backend that could not be initialised is represented by
// repositories.Unavailable.
type Handler struct {
	Auth             *services.AuthService
	Chat             *services.ChatService
	Search           repositories.Gateway
	Vector           repositories.Gateway
	VectorCollection string
	AppName          string
	AppVersion       string
	Log              *logrus.Logger
}

// gatewayError writes the response for a failed gateway call. Only caller
// mistakes are described; backend failures get a short generic message.
func (h *Handler) gatewayError(w http.ResponseWriter, gw repositories.Gateway, op string, err error) {
	entry := h.Log.WithError(err).WithField("gateway", gw.Name())
	switch {
	case errors.Is(err, repositories.ErrInvalidRequest):
		utils.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		entry.Debugf("%s: request ended before the backend answered", op)
		utils.Fail(w, http.StatusServiceUnavailable, fmt.Sprintf("%s is unavailable", gw.Name()))
	case errors.Is(err, repositories.ErrServiceUnavailable):
		entry.Warnf("%s: backend unavailable", op)
		utils.Fail(w, http.StatusServiceUnavailable, fmt.Sprintf("%s is unavailable", gw.Name()))
	default:
		entry.Errorf("%s failed", op)
		utils.Fail(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
	}
}

func badRequest(w http.ResponseWriter, message string) {
	utils.Fail(w, http.StatusBadRequest, message)
}
