package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshare/internal/httpx"
	"bookshare/internal/lookup"
)

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID))
}

func TestHTTPHandler_ListAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	testBook := Book{ID: "1", Title: "Test", Status: StatusAvailable}

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().ListAvailable(gomock.Any(), 10, 10).Return([]Book{testBook}, 11, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?page=2&page_size=10", nil)

		handler.ListAvailable(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Book         `json:"data"`
			Meta map[string]any `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Data, 1)
		assert.EqualValues(t, 2, body.Meta["total_pages"])
		assert.EqualValues(t, 11, body.Meta["total"])
	})

	t.Run("defaults page size", func(t *testing.T) {
		mockRepo.EXPECT().ListAvailable(gomock.Any(), 20, 0).Return(nil, 0, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?page_size=1000", nil)

		handler.ListAvailable(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("page out of range", func(t *testing.T) {
		for _, page := range []string{"0", "-1", "abc", "10001", "9223372036854775807"} {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/books?page="+page, nil)

			handler.ListAvailable(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code, "page=%s", page)
			assert.Contains(t, w.Body.String(), `"field":"page"`)
		}
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().ListAvailable(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books", nil)

		handler.ListAvailable(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_ListAvailableByCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	page := []Book{
		{ID: "3", CreatedAt: at.Add(2 * time.Minute)},
		{ID: "2", CreatedAt: at.Add(time.Minute)},
		{ID: "1", CreatedAt: at},
	}

	t.Run("first page has a next cursor", func(t *testing.T) {
		mockRepo.EXPECT().ListAvailableAfter(gomock.Any(), Cursor{}, 3).Return(page, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?cursor=&page_size=2", nil)

		handler.ListAvailable(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Book         `json:"data"`
			Meta map[string]any `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, EncodeCursor(CursorAfter(page[1])), body.Meta["next_cursor"])
	})

	t.Run("last page", func(t *testing.T) {
		after := CursorAfter(page[1])
		mockRepo.EXPECT().ListAvailableAfter(gomock.Any(), gomock.Any(), 3).
			DoAndReturn(func(_ context.Context, c Cursor, _ int) ([]Book, error) {
				assert.Equal(t, after.AfterID, c.AfterID)
				assert.True(t, after.CreatedAt.Equal(c.CreatedAt))
				return page[2:], nil
			})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?page_size=2&cursor="+EncodeCursor(after), nil)

		handler.ListAvailable(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"next_cursor":""`)
	})

	t.Run("malformed cursor", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?cursor=%21%21", nil)

		handler.ListAvailable(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CURSOR")
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(Book{ID: "1"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/1", nil)
		r.SetPathValue("id", "1")

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "2").Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/2", nil)
		r.SetPathValue("id", "2")

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	mockLookup := NewMockMetadataLookup(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, mockLookup))

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"isbn":"0306406152"}`))

		handler.Add(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid isbn is a validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"isbn":"0306406151"}`)), "u1")

		handler.Add(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		assert.Contains(t, w.Body.String(), "isbn")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{`)), "u1")

		handler.Add(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("created", func(t *testing.T) {
		mockLookup.EXPECT().Lookup(gomock.Any(), "978-0-306-40615-7").Return(lookup.Metadata{Title: "T", Author: "A"}, nil)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"isbn":"978-0-306-40615-7"}`)), "u1")

		handler.Add(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"isbn_13":"9780306406157"`)
	})

	t.Run("metadata not found", func(t *testing.T) {
		mockLookup.EXPECT().Lookup(gomock.Any(), "0306406152").Return(lookup.Metadata{}, lookup.ErrNotFound)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"isbn":"0306406152"}`)), "u1")

		handler.Add(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ISBN_NOT_FOUND")
	})

	t.Run("metadata service down", func(t *testing.T) {
		mockLookup.EXPECT().Lookup(gomock.Any(), "0306406152").Return(lookup.Metadata{}, lookup.ErrUnavailable)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"isbn":"0306406152"}`)), "u1")

		handler.Add(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHTTPHandler_OwnerActions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, nil))
	owned := Book{ID: "1", OwnerID: "u1", Status: StatusAvailable}

	t.Run("toggle", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(owned, nil)
		mockRepo.EXPECT().UpdateStatus(gomock.Any(), "1", StatusUnavailable).Return(nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books/1/toggle", nil), "u1")
		r.SetPathValue("id", "1")

		handler.Toggle(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unavailable"`)
	})

	t.Run("set status forbidden", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(owned, nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPatch, "/books/1/status", strings.NewReader(`{"status":"unavailable"}`)), "u2")
		r.SetPathValue("id", "1")

		handler.SetStatus(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("set status rejects unknown value", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPatch, "/books/1/status", strings.NewReader(`{"status":"lost"}`)), "u1")
		r.SetPathValue("id", "1")

		handler.SetStatus(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(owned, nil)
		mockRepo.EXPECT().Delete(gomock.Any(), "1").Return(nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodDelete, "/books/1", nil), "u1")
		r.SetPathValue("id", "1")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("book on loan cannot be changed or deleted", func(t *testing.T) {
		lent := Book{ID: "1", OwnerID: "u1", Status: StatusUnavailable}
		mockRepo.EXPECT().GetByID(gomock.Any(), "1").Return(lent, nil).Times(2)
		mockRepo.EXPECT().UpdateStatus(gomock.Any(), "1", StatusAvailable).Return(ErrOnLoan)
		mockRepo.EXPECT().Delete(gomock.Any(), "1").Return(ErrOnLoan)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/books/1/toggle", nil), "u1")
		r.SetPathValue("id", "1")
		handler.Toggle(w, r)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ON_LOAN")

		w = httptest.NewRecorder()
		r = withUser(httptest.NewRequest(http.MethodDelete, "/books/1", nil), "u1")
		r.SetPathValue("id", "1")
		handler.Delete(w, r)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("list mine", func(t *testing.T) {
		mockRepo.EXPECT().ListByOwner(gomock.Any(), "u1").Return([]Book{owned}, nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodGet, "/me/books", nil), "u1")

		handler.ListMine(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
