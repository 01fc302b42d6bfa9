package exchange

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshare/internal/book"
	"bookshare/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Request handles POST /exchanges
// @Summary Ask to borrow a book
// @Tags exchanges
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RequestCommand true "Book to borrow"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /exchanges [post]
func (h *HTTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var cmd RequestCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(cmd); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	e, err := h.service.Request(r.Context(), userID, cmd.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, e)
}

// Act handles POST /exchanges/{id}/{action}
// @Summary Approve, reject, cancel or return an exchange
// @Tags exchanges
// @Produce json
// @Security Bearer
// @Param id path string true "Exchange ID"
// @Param action path string true "approve | reject | cancel | return"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /exchanges/{id}/{action} [post]
func (h *HTTPHandler) Act(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	e, err := h.service.Act(r.Context(), userID, r.PathValue("id"), r.PathValue("action"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, e, nil)
}

// ListBorrowed handles GET /me/borrowed
func (h *HTTPHandler) ListBorrowed(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	items, err := h.service.ListBorrowed(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}

// ListIncoming handles GET /me/requests
func (h *HTTPHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	items, err := h.service.ListIncoming(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Exchange not found", nil)
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You cannot perform this action", nil)
	case errors.Is(err, ErrUnknownAction):
		httpx.JSONError(w, r, http.StatusNotFound, "UNKNOWN_ACTION", "Unknown exchange action", nil)
	case errors.Is(err, ErrOwnBook):
		httpx.JSONError(w, r, http.StatusBadRequest, "OWN_BOOK", "You cannot borrow your own book", nil)
	case errors.Is(err, ErrBookUnavailable):
		httpx.JSONError(w, r, http.StatusConflict, "BOOK_UNAVAILABLE", "Book is not available", nil)
	case errors.Is(err, ErrAlreadyRequested):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_REQUESTED", "You already requested this book", nil)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		httpx.JSONError(w, r, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
