package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amrshah/tenantengine/pkg/plan"
	"github.com/amrshah/tenantengine/pkg/registry"
	"github.com/amrshah/tenantengine/pkg/slug"
	"github.com/amrshah/tenantengine/pkg/tenant"
)

// Handler exposes tenant administration over HTTP. Routes are meant to be
// mounted behind an operator-facing auth layer, not on tenant paths.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the admin HTTP handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{svc: svc, log: log}
}

// Routes returns the admin router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
		r.Get("/stats", h.stats)
		r.Post("/suspend", h.suspend)
		r.Post("/activate", h.activate)
		r.Post("/cancel", h.cancel)
	})
	return r
}

type createRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Slug      string `json:"slug"`
	Plan      string `json:"plan"`
	TrialDays *int   `json:"trial_days"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		h.writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "name and email are required")
		return
	}

	t, err := h.svc.Create(r.Context(), CreateParams{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Slug:      req.Slug,
		Plan:      req.Plan,
		TrialDays: req.TrialDays,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"data": t})
}

type updateRequest struct {
	Name     *string        `json:"name"`
	Email    *string        `json:"email"`
	Phone    *string        `json:"phone"`
	Plan     *string        `json:"plan"`
	Settings map[string]any `json:"settings"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON")
		return
	}

	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "slug"), UpdateParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Plan:     req.Plan,
		Settings: req.Settings,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": h.svc.StatsFor(t)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := registry.Filter{
		Status: tenant.Status(q.Get("status")),
		Plan:   q.Get("plan"),
		Search: q.Get("search"),
	}
	if v := q.Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	tenants, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"data": tenants,
		"meta": map[string]any{"total": total, "count": len(tenants)},
	})
}

type statusRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	t, err := h.svc.Suspend(r.Context(), chi.URLParam(r, "slug"), req.Reason)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Activate(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	t, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "slug"), req.Reason)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	purge := r.URL.Query().Get("purge_storage") == "true"

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "slug"), purge); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		h.writeError(w, r, http.StatusNotFound, "TENANT_NOT_FOUND", "The requested tenant does not exist")
	case errors.Is(err, registry.ErrDuplicateTenant):
		h.writeError(w, r, http.StatusConflict, "TENANT_EXISTS", "A tenant with this slug or external ID already exists")
	case errors.Is(err, ErrInvalidTransition):
		h.writeError(w, r, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, slug.ErrInvalidSlug), errors.Is(err, slug.ErrReservedSlug):
		h.writeError(w, r, http.StatusUnprocessableEntity, "INVALID_SLUG", err.Error())
	case errors.Is(err, plan.ErrPlanNotFound):
		h.writeError(w, r, http.StatusUnprocessableEntity, "UNKNOWN_PLAN", "The requested plan does not exist")
	default:
		h.log.ErrorContext(r.Context(), "tenant admin request failed",
			"path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, _ *http.Request, status int, code, detail string) {
	h.writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{
			"status": strconv.Itoa(status),
			"code":   code,
			"detail": detail,
		}},
	})
}
