package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	authzMW authz.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authzMW: mw}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authzMW.RequireCapability(authz.CapDashboardView))
		r.Get("/stats", h.Stats)
	})
	r.Group(func(r chi.Router) {
		// Enforced here, not only in the UI: hiding the button in the
		// SPA is a usability affordance, this check is the boundary.
		r.Use(h.authzMW.RequireCapability(authz.CapClearSystemData))
		r.Post("/clear", h.Clear)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	actor := authz.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	if err := h.service.ClearData(r.Context(), actor.UserID); err != nil {
		h.logger.Error("clear system data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "system data cleared"})
}
