package lookup

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"

	"bookshare/internal/httpx"
)

// Looker is satisfied by *Service.
type Looker interface {
	Lookup(ctx context.Context, raw string) (Metadata, error)
}

type HTTPHandler struct {
	service Looker
}

func NewHTTPHandler(service Looker) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Preview handles GET /isbn/{isbn}
// @Summary Preview book metadata for an ISBN
// @Tags isbn
// @Produce json
// @Param isbn path string true "ISBN-10 or ISBN-13, hyphens allowed"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /isbn/{isbn} [get]
func (h *HTTPHandler) Preview(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.Lookup(r.Context(), r.PathValue("isbn"))
	switch {
	case err == nil:
		httpx.JSONSuccess(w, r, md, nil)
	case errors.Is(err, ErrInvalidISBN):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ISBN", "Please enter a valid ISBN-10 or ISBN-13", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "ISBN_NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "LOOKUP_UNAVAILABLE", "Failed to fetch book data", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
