package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/insurguide/internal/api/services"
	"github.com/rohits-web03/insurguide/internal/models"
	"github.com/rohits-web03/insurguide/internal/utils"
)

type contextKey string

const userKey contextKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// CurrentUser returns the user resolved by Auth.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth rejects the request before it reaches next unless it carries a valid
// bearer token for an existing, active user.
func Auth(auth Authenticator, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			case errors.Is(err, services.ErrTokenExpired):
				unauthorized(w, "Token has expired")
			case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUserNotFound):
				unauthorized(w, "Could not validate credentials")
			case errors.Is(err, services.ErrInactiveUser):
				utils.Fail(w, http.StatusForbidden, "Inactive user")
			default:
				log.WithError(err).Error("authenticate request")
				utils.Fail(w, http.StatusInternalServerError, "Internal server error")
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.Fail(w, http.StatusUnauthorized, message)
}
