package leads

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
		r.Use(h.authzMW.RequireCapability(authz.CapLeadsView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authzMW.RequireCapability(authz.CapLeadsEdit))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authzMW.RequireCapability(authz.CapLeadsImport))
		r.Post("/bulk", h.Import)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListLeadsRequest{Limit: 50, Offset: 0}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		if id, err := strconv.ParseInt(owner, 10, 64); err == nil && id > 0 {
			req.OwnerID = &id
		}
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
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

	leads, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list leads", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if leads == nil {
		leads = []Lead{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"leads":  leads,
		"total":  total,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lead id")
		return
	}
	lead, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	lead, err := h.service.Create(r.Context(), req, actor.UserID)
	if err != nil {
		h.logger.Error("create lead", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"lead": lead})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lead id")
		return
	}
	var req UpdateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	lead, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update lead", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lead id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var rows []LeadRow
	if err := httpx.DecodeJSON(r, &rows); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "body must be a JSON array of lead rows")
		return
	}
	actor := authz.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthenticated)
		return
	}
	result, err := h.service.Import(r.Context(), rows, actor.UserID)
	if err != nil {
		h.logger.Warn("lead import audit", slog.Any("error", err))
	}
	message := "import completed"
	if len(result.Errors) > 0 {
		message = "import completed with errors"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":       message,
		"insertedCount": result.InsertedCount,
		"errors":        result.Errors,
	})
}
