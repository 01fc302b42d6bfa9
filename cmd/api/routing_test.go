package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshare/internal/auth"
	"bookshare/internal/book"
	"bookshare/internal/exchange"
	"bookshare/internal/httpx"
	"bookshare/internal/lookup"
	"bookshare/internal/message"
	"bookshare/internal/profile"
	"bookshare/internal/testutil"
	"bookshare/internal/user"
)

const testSecret = "routing-test-secret"

type fixture struct {
	router  http.Handler
	books   *book.MockRepository
	users   *user.MockRepository
	ready   error
	profile *profile.MockRepository
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		books:   book.NewMockRepository(ctrl),
		users:   user.NewMockRepository(ctrl),
		profile: profile.NewMockRepository(ctrl),
	}

	cfg := config{
		JWTSecret:          testSecret,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:       1 << 20,
	}
	userService := user.NewService(f.users)
	lookupService := lookup.NewService(nil, nil, time.Minute)
	bookService := book.NewService(f.books, book.NewMockMetadataLookup(ctrl))

	f.router = newRouter(cfg, handlers{
		auth:      auth.NewHTTPHandler(auth.NewService(testSecret, time.Hour, userService)),
		users:     user.NewHTTPHandler(userService),
		profiles:  profile.NewHTTPHandler(profile.NewService(f.profile)),
		books:     book.NewHTTPHandler(bookService),
		lookup:    lookup.NewHTTPHandler(lookupService),
		exchanges: exchange.NewHTTPHandler(exchange.NewService(exchange.NewMockRepository(ctrl), bookService)),
		messages:  message.NewHTTPHandler(message.NewService(message.NewMockRepository(ctrl))),
	}, httpx.NewRateLimiter(1000, 1000), func(context.Context) error { return f.ready })
	return f
}

func (f *fixture) serve(r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)

	res := f.serve(testutil.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	res = f.serve(testutil.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	f.ready = errors.New("db down")
	res = f.serve(testutil.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/me/profile"},
		{http.MethodPatch, "/me/profile"},
		{http.MethodGet, "/me/contacts"},
		{http.MethodGet, "/me/books"},
		{http.MethodGet, "/me/borrowed"},
		{http.MethodGet, "/me/requests"},
		{http.MethodPost, "/books"},
		{http.MethodPatch, "/books/1/status"},
		{http.MethodPost, "/books/1/toggle"},
		{http.MethodDelete, "/books/1"},
		{http.MethodPost, "/exchanges"},
		{http.MethodPost, "/exchanges/1/approve"},
		{http.MethodPost, "/messages"},
		{http.MethodGet, "/messages/someone"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			res := f.serve(testutil.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, res.Code)
			assert.Equal(t, "UNAUTHORIZED", res.ErrorCode())
		})
	}

	t.Run("expired token", func(t *testing.T) {
		token := testutil.GenerateExpiredToken(testSecret, testutil.TestUser.ID)
		res := f.serve(testutil.NewRequestWithAuth(http.MethodGet, "/me", nil, token))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	f := newFixture(t)
	token := testutil.GenerateTestToken(testSecret, testutil.TestUser.ID)

	f.users.EXPECT().GetByID(gomock.Any(), testutil.TestUser.ID).Return(testutil.TestUser, nil)
	res := f.serve(testutil.NewRequestWithAuth(http.MethodGet, "/me", nil, token))
	require.Equal(t, http.StatusOK, res.Code)
	data := res.Body["data"].(map[string]interface{})
	assert.Equal(t, testutil.TestUser.Email, data["email"])

	f.books.EXPECT().ListByOwner(gomock.Any(), testutil.TestUser.ID).Return([]book.Book{testutil.TestBook}, nil)
	res = f.serve(testutil.NewRequestWithAuth(http.MethodGet, "/me/books", nil, token))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newFixture(t)

	f.books.EXPECT().ListAvailable(gomock.Any(), 20, 0).Return([]book.Book{testutil.TestBook}, 1, nil)
	res := f.serve(testutil.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, res.Code)

	f.books.EXPECT().GetByID(gomock.Any(), testutil.TestBook.ID).Return(testutil.TestBook, nil)
	res = f.serve(testutil.NewRequest(http.MethodGet, "/books/"+testutil.TestBook.ID, nil))
	assert.Equal(t, http.StatusOK, res.Code)

	f.profile.EXPECT().GetByID(gomock.Any(), "someone").Return(profile.Profile{}, profile.ErrNotFound)
	res = f.serve(testutil.NewRequest(http.MethodGet, "/profiles/someone", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = f.serve(testutil.NewRequest(http.MethodGet, "/isbn/978-0-306-40615-8", nil))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "INVALID_ISBN", res.ErrorCode())
}

func TestRouter_MethodAndPathMismatch(t *testing.T) {
	f := newFixture(t)

	res := f.serve(testutil.NewRequest(http.MethodPut, "/books", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)

	res = f.serve(testutil.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestRouter_SecurityHeadersAndCORS(t *testing.T) {
	f := newFixture(t)

	r := testutil.NewRequest(http.MethodOptions, "/books", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res := f.serve(r)

	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t)

	f.serve(testutil.NewRequest(http.MethodGet, "/healthz", nil))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `bookshare_http_requests_total{code="200",method="GET",route="GET /healthz"}`)
}
