// Package ask exposes the authenticated question dispatch and history
// retrieval endpoints.
package ask

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nbcassistant/backend/internal/engine"
	"github.com/nbcassistant/backend/internal/middleware"
	queryService "github.com/nbcassistant/backend/internal/service/query"
	"github.com/nbcassistant/backend/pkg/utils"
)

// Handler serves POST /ask and GET /ask. Both routes expect the auth
// middleware to have resolved the caller's identity already.
type Handler struct {
	querySvc *queryService.Service
}

func New(querySvc *queryService.Service) *Handler {
	return &Handler{querySvc: querySvc}
}

// RegisterRoutes mounts the ask endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleDispatch)
	r.Get("/ask", h.handleHistory)
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.querySvc.Dispatch(r.Context(), identity.ID, payload.Question)
	if err != nil {
		switch {
		case errors.Is(err, queryService.ErrEmptyQuestion):
			utils.RespondError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, engine.ErrOutputTooLarge):
			utils.RespondError(w, http.StatusInternalServerError, "answer engine output too large")
		default:
			// Details stay in the server log; clients get a fixed message.
			log.Printf("[ask] dispatch failed for user %s: %v", identity.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "answer engine failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"output": output,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.querySvc.History(r.Context(), identity.ID)
	if err != nil {
		log.Printf("[ask] history fetch failed for user %s: %v", identity.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"queries": records,
	})
}
