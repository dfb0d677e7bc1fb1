// Package login issues bearer tokens for the configured account.
package login

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nbcassistant/backend/internal/auth"
	"github.com/nbcassistant/backend/internal/config"
	"github.com/nbcassistant/backend/pkg/utils"
)

type Handler struct {
	provider *auth.JWTProvider
	cfg      config.AuthConfig
}

func New(provider *auth.JWTProvider, cfg config.AuthConfig) *Handler {
	return &Handler{provider: provider, cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.LoginEnabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "login is not configured")
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email != h.cfg.LoginEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.LoginPasswordHash), []byte(payload.Password)) != nil {
		utils.RespondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Invalid credentials",
		})
		return
	}

	identity := auth.Identity{ID: auth.UserIDForEmail(email), Email: email}
	token, err := h.provider.IssueToken(identity, h.cfg.TokenTTL)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user_id": identity.ID,
	})
}
