package api

import (
	"net/http"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rohits-web03/insurguide/docs"
	"github.com/rohits-web03/insurguide/internal/api/handlers"
	"github.com/rohits-web03/insurguide/internal/api/middleware"
	"github.com/rohits-web03/insurguide/internal/config"
)

func SetupRouter(h *handlers.Handler, cfg config.Config) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig())
	requireAuth := middleware.Auth(h.Auth, h.Log)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /{$}", h.Root)
	mainMux.HandleFunc("GET /health", h.Health)
	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	mainMux.HandleFunc("POST /api/auth/register", h.RegisterUser)
	mainMux.HandleFunc("POST /api/auth/login", h.LoginUser)

	// ---------- PROTECTED ROUTES ----------
	mainMux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(h.CurrentUser)))
	mainMux.Handle("POST /api/chat", requireAuth(http.HandlerFunc(h.AskAdvisor)))

	esMux := http.NewServeMux()
	esMux.HandleFunc("POST /index", h.IndexDocument)
	esMux.HandleFunc("POST /search", h.SearchDocuments)
	esMux.HandleFunc("POST /create-index", h.CreateIndex)
	esMux.HandleFunc("DELETE /delete-index/{index_name}", h.DeleteIndex)
	esMux.HandleFunc("DELETE /delete", h.DeleteSearchDocuments)
	esMux.HandleFunc("GET /health", h.SearchHealth)

	vectorMux := http.NewServeMux()
	vectorMux.HandleFunc("POST /add", h.AddDocuments)
	vectorMux.HandleFunc("POST /query", h.QueryDocuments)
	vectorMux.HandleFunc("DELETE /delete", h.RemoveDocuments)
	vectorMux.HandleFunc("POST /create-collection", h.CreateCollection)
	vectorMux.HandleFunc("GET /health", h.VectorHealth)

	mainMux.Handle("/api/es/",
		requireAuth(http.StripPrefix("/api/es", esMux)),
	)
	mainMux.Handle("/api/vector/",
		requireAuth(http.StripPrefix("/api/vector", vectorMux)),
	)

	h.Log.Debug("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(h.Log)(handler)
	return handler
}
