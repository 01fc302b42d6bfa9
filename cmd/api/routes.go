package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookshare/internal/auth"
	"bookshare/internal/book"
	"bookshare/internal/exchange"
	"bookshare/internal/httpx"
	"bookshare/internal/lookup"
	"bookshare/internal/message"
	"bookshare/internal/profile"
	"bookshare/internal/user"
)

type handlers struct {
	auth      *auth.HTTPHandler
	users     *user.HTTPHandler
	profiles  *profile.HTTPHandler
	books     *book.HTTPHandler
	lookup    *lookup.HTTPHandler
	exchanges *exchange.HTTPHandler
	messages  *message.HTTPHandler
}

// readyCheck reports whether a dependency can serve traffic.
type readyCheck func(ctx context.Context) error

func newRouter(cfg config, h handlers, limiter *httpx.RateLimiter, ready readyCheck) http.Handler {
	mux := http.NewServeMux()
	protected := httpx.AuthMiddleware(cfg.JWTSecret)
	secure := func(fn http.HandlerFunc) http.Handler {
		return protected(fn)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /auth/register", h.auth.Register)
	mux.HandleFunc("POST /auth/login", h.auth.Login)

	mux.Handle("GET /me", secure(h.users.GetCurrentUser))
	mux.Handle("GET /me/profile", secure(h.profiles.GetOwnProfile))
	mux.Handle("PATCH /me/profile", secure(h.profiles.UpdateProfile))
	mux.Handle("GET /me/contacts", secure(h.profiles.Contacts))
	mux.Handle("GET /me/books", secure(h.books.ListMine))
	mux.Handle("GET /me/borrowed", secure(h.exchanges.ListBorrowed))
	mux.Handle("GET /me/requests", secure(h.exchanges.ListIncoming))
	mux.HandleFunc("GET /profiles/{id}", h.profiles.GetProfile)

	mux.HandleFunc("GET /isbn/{isbn}", h.lookup.Preview)

	mux.HandleFunc("GET /books", h.books.ListAvailable)
	mux.Handle("POST /books", secure(h.books.Add))
	mux.HandleFunc("GET /books/{id}", h.books.Get)
	mux.Handle("PATCH /books/{id}/status", secure(h.books.SetStatus))
	mux.Handle("POST /books/{id}/toggle", secure(h.books.Toggle))
	mux.Handle("DELETE /books/{id}", secure(h.books.Delete))

	mux.Handle("POST /exchanges", secure(h.exchanges.Request))
	mux.Handle("POST /exchanges/{id}/{action}", secure(h.exchanges.Act))

	mux.Handle("POST /messages", secure(h.messages.Send))
	mux.Handle("GET /messages/{userID}", secure(h.messages.Conversation))

	return httpx.Chain(mux,
		httpx.RecoveryMiddleware,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.MetricsMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		limiter.Middleware,
	)
}
