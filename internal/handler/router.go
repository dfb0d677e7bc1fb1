package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nbcassistant/backend/internal/auth"
	"github.com/nbcassistant/backend/internal/config"
	"github.com/nbcassistant/backend/internal/handler/ask"
	"github.com/nbcassistant/backend/internal/handler/login"
	middlewarePkg "github.com/nbcassistant/backend/internal/middleware"
	queryService "github.com/nbcassistant/backend/internal/service/query"
	"github.com/nbcassistant/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(gateway *auth.Gateway, provider *auth.JWTProvider, querySvc *queryService.Service, authCfg config.AuthConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	askHandler := ask.New(querySvc)
	loginHandler := login.New(provider, authCfg)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		loginHandler.RegisterRoutes(api)

		// Privileged routes resolve the bearer credential before any
		// other collaborator is touched.
		api.Group(func(priv chi.Router) {
			priv.Use(middlewarePkg.Auth(gateway))
			askHandler.RegisterRoutes(priv)
		})
	})

	return r
}
