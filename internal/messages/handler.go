package messages

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

// Handler exposes partner messaging endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers messaging routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleSend)
	r.Get("/inbox", h.handleInbox)
	r.Get("/conversation/{userID}", h.handleConversation)
	r.Put("/{id}/read", h.handleMarkRead)
}

type messageResponse struct {
	ID              int64      `json:"id"`
	SenderUserID    int64      `json:"sender_user_id"`
	RecipientUserID int64      `json:"recipient_user_id"`
	Body            string     `json:"body"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toResponse(m Message) messageResponse {
	return messageResponse{
		ID:              m.ID,
		SenderUserID:    m.SenderUserID,
		RecipientUserID: m.RecipientUserID,
		Body:            m.Body,
		ReadAt:          m.ReadAt,
		CreatedAt:       m.CreatedAt,
	}
}

func toResponses(list []Message) []messageResponse {
	out := make([]messageResponse, len(list))
	for i, m := range list {
		out[i] = toResponse(m)
	}
	return out
}

type sendRequest struct {
	RecipientUserID int64  `json:"recipient_user_id" validate:"required,gt=0"`
	Body            string `json:"body" validate:"required,min=1,max=4000"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "recipient_user_id and a non-empty body are required")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	msg, err := h.service.Send(r.Context(), principal, req.RecipientUserID, req.Body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(msg))
}

func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.Inbox(r.Context(), principal)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": toResponses(list)})
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	otherID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || otherID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.Conversation(r.Context(), principal, otherID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": toResponses(list)})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch err {
	case shared.ErrNotFound:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "message not found")
	default:
		httpx.RespondError(w, err)
	}
}
