package clients

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-advisory/meridian/internal/auth"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Handler exposes client profile endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers client routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/me", h.handleGetMine)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handleUpdate)
		r.Put("/assignment", h.handleAssign)
		r.Delete("/", h.handleDelete)
	})
}

type clientResponse struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	AssignedEmployeeID int64     `json:"assigned_employee_id"`
	FullName           string    `json:"full_name"`
	RiskProfile        string    `json:"risk_profile"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toResponse(c Client) clientResponse {
	return clientResponse{
		ID:                 c.ID,
		UserID:             c.UserID,
		AssignedEmployeeID: c.AssignedEmployeeID,
		FullName:           c.FullName,
		RiskProfile:        c.RiskProfile,
		Notes:              c.Notes,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type createRequest struct {
	UserID             int64  `json:"user_id" validate:"required,gt=0"`
	AssignedEmployeeID int64  `json:"assigned_employee_id" validate:"gte=0"`
	FullName           string `json:"full_name" validate:"required,min=2"`
	RiskProfile        string `json:"risk_profile" validate:"required,oneof=conservative balanced growth aggressive"`
	Notes              string `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user_id, full_name and a valid risk_profile are required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	client, err := h.service.Create(r.Context(), principal, CreateParams{
		UserID:             req.UserID,
		AssignedEmployeeID: req.AssignedEmployeeID,
		FullName:           req.FullName,
		RiskProfile:        req.RiskProfile,
		Notes:              req.Notes,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(client))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, total, err := h.service.List(r.Context(), principal, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]clientResponse, len(list))
	for i, c := range list {
		out[i] = toResponse(c)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clients":    out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	client, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(client))
}

func (h *Handler) handleGetMine(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	client, err := h.service.GetMine(r.Context(), principal)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(client))
}

type updateRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2"`
	RiskProfile string `json:"risk_profile" validate:"required,oneof=conservative balanced growth aggressive"`
	Notes       string `json:"notes"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "full_name and a valid risk_profile are required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	client, err := h.service.Update(r.Context(), principal, id, UpdateParams{
		FullName:    req.FullName,
		RiskProfile: req.RiskProfile,
		Notes:       req.Notes,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(client))
}

type assignRequest struct {
	EmployeeID int64 `json:"employee_id" validate:"required,gt=0"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "employee_id is required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	client, err := h.service.Assign(r.Context(), principal, id, req.EmployeeID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(client))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch err {
	case shared.ErrNotFound:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "client not found")
	default:
		httpx.RespondError(w, err)
	}
}
