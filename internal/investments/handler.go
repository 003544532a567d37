package investments

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

// Handler exposes portfolio endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers investment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/me", h.handleListMine)
	r.Get("/client/{clientID}", h.handleListByClient)
	r.Get("/client/{clientID}/summary", h.handleSummary)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handleUpdate)
	})
}

type investmentResponse struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Currency  string    `json:"currency"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(inv Investment) investmentResponse {
	return investmentResponse{
		ID:        inv.ID,
		ClientID:  inv.ClientID,
		Symbol:    inv.Symbol,
		Quantity:  inv.Quantity,
		UnitPrice: inv.UnitPrice,
		Currency:  inv.Currency,
		Value:     inv.Value(),
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

type createRequest struct {
	ClientID  int64   `json:"client_id" validate:"required,gt=0"`
	Symbol    string  `json:"symbol" validate:"required,min=1,max=12"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,iso4217"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "client_id, symbol, positive quantity, unit_price and an ISO currency are required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	inv, err := h.service.Create(r.Context(), principal, CreateParams{
		ClientID:  req.ClientID,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	inv, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(inv))
}

type updateRequest struct {
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "positive quantity and unit_price are required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	inv, err := h.service.Update(r.Context(), principal, id, UpdateParams{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.ListMine(r.Context(), principal)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"investments": toResponses(list)})
}

func (h *Handler) handleListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientID")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.ListByClient(r.Context(), principal, clientID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"investments": toResponses(list)})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientID")
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	summary, err := h.service.Summarize(r.Context(), principal, clientID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	totals := make([]map[string]any, len(summary.Totals))
	for i, t := range summary.Totals {
		totals[i] = map[string]any{
			"currency":  t.Currency,
			"value":     t.Value,
			"formatted": t.Formatted,
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"client_id": summary.ClientID,
		"totals":    totals,
	})
}

func toResponses(list []Investment) []investmentResponse {
	out := make([]investmentResponse, len(list))
	for i, inv := range list {
		out[i] = toResponse(inv)
	}
	return out
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch err {
	case shared.ErrNotFound:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "investment not found")
	default:
		httpx.RespondError(w, err)
	}
}
