package comms

import (
	"log/slog"
	"net/http"
	"strconv"

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
		r.Use(h.authzMW.RequireCapability(authz.CapCommsView))
		r.Get("/", h.List)
		r.Get("/pending", h.Pending)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authzMW.RequireCapability(authz.CapCommsLog))
		r.Post("/", h.Log)
		r.Post("/{id}/reply", h.MarkReplied)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListCommunicationsRequest{Limit: 50}

	if lead := r.URL.Query().Get("lead_id"); lead != "" {
		if id, err := strconv.ParseInt(lead, 10, 64); err == nil && id > 0 {
			req.LeadID = &id
		}
	}
	if customer := r.URL.Query().Get("customer_id"); customer != "" {
		if id, err := strconv.ParseInt(customer, 10, 64); err == nil && id > 0 {
			req.CustomerID = &id
		}
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	comms, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list communications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if comms == nil {
		comms = []Communication{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"communications": comms,
		"total":          total,
	})
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	comms, total, err := h.service.AwaitingReply(r.Context(), 50, 0)
	if err != nil {
		h.logger.Error("pending communications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if comms == nil {
		comms = []Communication{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"communications": comms,
		"total":          total,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid communication id")
		return
	}
	comm, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"communication": comm})
}

func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	var req LogCommunicationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	comm, err := h.service.Log(r.Context(), req, actor.UserID)
	if err != nil {
		h.logger.Error("log communication", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"communication": comm})
}

func (h *Handler) MarkReplied(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid communication id")
		return
	}
	comm, err := h.service.MarkReplied(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"communication": comm})
}
