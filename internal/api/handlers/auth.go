package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/rohits-web03/insurguide/internal/api/middleware"
	"github.com/rohits-web03/insurguide/internal/api/services"
	"github.com/rohits-web03/insurguide/internal/utils"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// POST /api/auth/register
// RegisterUser godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account details"
// @Success 201 {object} utils.Payload{data=models.User}
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/auth/register [post]
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input RegisterRequest
	if err := utils.DecodeJSON(w, r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	user, err := h.Auth.Register(r.Context(), input.Username, input.Email, input.Password)
	var inputErr *services.InputError
	switch {
	case err == nil:
	case errors.As(err, &inputErr):
		badRequest(w, inputErr.Reason)
		return
	case errors.Is(err, services.ErrDuplicateUser):
		utils.Fail(w, http.StatusConflict, "Username or email already registered")
		return
	default:
		h.Log.WithError(err).Error("register user")
		utils.Fail(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.Log.WithField("user", user.Username).Info("user registered")
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}

// loginCredentials accepts the OAuth2 password form and, for convenience,
// a JSON body with the same fields.
func loginCredentials(w http.ResponseWriter, r *http.Request) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var input struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := utils.DecodeJSON(w, r, &input); err != nil {
			return "", "", err
		}
		return input.Username, input.Password, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}

// POST /api/auth/login
// LoginUser godoc
// @Summary Exchange username and password for a bearer token
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} utils.Payload
// @Router /api/auth/login [post]
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	username, password, err := loginCredentials(w, r)
	if err != nil {
		badRequest(w, "Invalid input")
		return
	}

	token, err := h.Auth.Login(r.Context(), username, password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		utils.Fail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	default:
		h.Log.WithError(err).Error("login")
		utils.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(h.Auth.TTL().Seconds()),
	})
}

// GET /api/auth/me
// CurrentUser godoc
// @Summary Return the authenticated user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload{data=models.User}
// @Failure 401 {object} utils.Payload
// @Router /api/auth/me [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Current user",
		Data:    user,
	})
}
