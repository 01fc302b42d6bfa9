package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookshare/internal/platform/crypto"
	"bookshare/internal/user"
)

const testSecret = "test-secret-key"

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Register(ctx context.Context, a user.NewAccount) (user.User, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	users := new(mockUsers)
	svc := NewService(testSecret, time.Hour, users)

	users.On("Register", mock.Anything, mock.MatchedBy(func(a user.NewAccount) bool {
		return a.Email == "reader@example.com" &&
			a.Username == "reader" &&
			crypto.VerifyPassword(a.PasswordHash, "Secr3t!pass")
	})).Return(user.User{ID: "u1", Email: "reader@example.com"}, nil)

	u, err := svc.Register(context.Background(), RegisterCommand{
		Email: "reader@example.com", Password: "Secr3t!pass", Username: "reader",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	users.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	hash, err := crypto.HashPassword("Secr3t!pass")
	require.NoError(t, err)
	account := user.User{ID: "u1", Email: "reader@example.com", PasswordHash: hash}

	t.Run("valid credentials", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(account, nil)
		svc := NewService(testSecret, time.Hour, users)

		tok, err := svc.Login(context.Background(), "reader@example.com", "Secr3t!pass")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, 3600, tok.ExpiresIn)

		claims, err := crypto.ParseToken(testSecret, tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(account, nil)
		svc := NewService(testSecret, time.Hour, users)

		_, err := svc.Login(context.Background(), "reader@example.com", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(user.User{}, user.ErrNotFound)
		svc := NewService(testSecret, time.Hour, users)

		_, err := svc.Login(context.Background(), "ghost@example.com", "Secr3t!pass")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("zero ttl falls back to default", func(t *testing.T) {
		svc := NewService(testSecret, 0, new(mockUsers))
		assert.Equal(t, defaultTokenTTL, svc.ttl)
	})
}

func TestHTTPHandler_Register(t *testing.T) {
	t.Run("weak password", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(testSecret, time.Hour, new(mockUsers)))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"reader@example.com","password":"password","username":"reader"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "password")
	})

	t.Run("duplicate", func(t *testing.T) {
		users := new(mockUsers)
		users.On("Register", mock.Anything, mock.Anything).Return(user.User{}, user.ErrAlreadyExists)
		handler := NewHTTPHandler(NewService(testSecret, time.Hour, users))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"reader@example.com","password":"Secr3t!pass","username":"reader"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("username taken", func(t *testing.T) {
		users := new(mockUsers)
		users.On("Register", mock.Anything, mock.Anything).Return(user.User{}, user.ErrUsernameTaken)
		handler := NewHTTPHandler(NewService(testSecret, time.Hour, users))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"second@example.com","password":"Secr3t!pass","username":"reader"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "USERNAME_TAKEN")
	})

	t.Run("created", func(t *testing.T) {
		users := new(mockUsers)
		users.On("Register", mock.Anything, mock.Anything).Return(user.User{ID: "u1", Email: "reader@example.com"}, nil)
		handler := NewHTTPHandler(NewService(testSecret, time.Hour, users))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"reader@example.com","password":"Secr3t!pass","username":"reader","full_name":"Rea Der"}`))

		handler.Register(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"u1"`)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	users := new(mockUsers)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(user.User{}, user.ErrNotFound)
	handler := NewHTTPHandler(NewService(testSecret, time.Hour, users))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ghost@example.com","password":"x"}`))

	handler.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}
