package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bookshare/internal/httpx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps the offset well inside int range.
	maxPage = 10000
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Add handles POST /books
// @Summary List a book by ISBN
// @Description Validate the ISBN, fetch its metadata and add the book to the caller's library
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body AddCommand true "Book to add"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var cmd AddCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(cmd); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	b, err := h.service.AddByISBN(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// ListAvailable handles GET /books
// @Summary Discover books
// @Description Books currently available for borrowing, newest first
// @Tags books
// @Produce json
// @Param page query int false "Page number (offset paging)"
// @Param cursor query string false "Keyset cursor; empty for the first page"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	if query.Has("cursor") {
		books, next, err := h.service.ListAvailableAfter(r.Context(), query.Get("cursor"), pageSize)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.JSONSuccess(w, r, books, map[string]any{
			"page_size":   pageSize,
			"next_cursor": next,
		})
		return
	}

	page := 1
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPage {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "page", Message: fmt.Sprintf("page must be between 1 and %d", maxPage)},
			})
			return
		}
		page = n
	}

	books, total, err := h.service.ListAvailable(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// ListMine handles GET /me/books
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	books, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=available unavailable"`
}

// SetStatus handles PATCH /books/{id}/status
func (h *HTTPHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	b, err := h.service.SetStatus(r.Context(), userID, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Toggle handles POST /books/{id}/toggle
func (h *HTTPHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	b, err := h.service.ToggleAvailability(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You do not own this book", nil)
	case errors.Is(err, ErrOnLoan):
		httpx.JSONError(w, r, http.StatusConflict, "ON_LOAN", "Book is lent out until it is returned", nil)
	case errors.Is(err, ErrInvalidCursor):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "Invalid cursor", nil)
	case errors.Is(err, ErrInvalidISBN):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ISBN", "Please enter a valid ISBN-10 or ISBN-13", nil)
	case errors.Is(err, ErrMetadataNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "ISBN_NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrMetadataUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "LOOKUP_UNAVAILABLE", "Failed to fetch book data", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
