package message

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshare/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Send handles POST /messages
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SendCommand true "Message"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /messages [post]
func (h *HTTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var cmd SendCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(cmd); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	m, err := h.service.Send(r.Context(), userID, cmd.ReceiverID, cmd.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrTooLong), errors.Is(err, ErrSelfMessage):
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_MESSAGE", err.Error(), nil)
		case errors.Is(err, ErrUnknownReceiver):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Receiver not found", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccessCreated(w, r, m)
}

// Conversation handles GET /messages/{userID}
// @Summary Conversation with another member
// @Tags messages
// @Produce json
// @Security Bearer
// @Param userID path string true "Other member ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /messages/{userID} [get]
func (h *HTTPHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	msgs, more, err := h.service.Conversation(r.Context(), userID, r.PathValue("userID"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, msgs, map[string]any{
		"total":    len(msgs),
		"limit":    ConversationLimit,
		"has_more": more,
	})
}
