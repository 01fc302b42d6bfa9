package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookshare/internal/auth"
	"bookshare/internal/book"
	"bookshare/internal/cache"
	"bookshare/internal/exchange"
	"bookshare/internal/httpx"
	"bookshare/internal/lookup"
	"bookshare/internal/message"
	"bookshare/internal/platform/openlibrary"
	"bookshare/internal/profile"
	"bookshare/internal/user"
)

func main() {
	loadEnvFiles()
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DSN)
	defer dbPool.Close()

	lookupCache := openCache(ctx, cfg)
	defer lookupCache.Close()

	olClient := openlibrary.NewClient(openlibrary.Config{
		BaseURL:    cfg.OpenLibraryBaseURL,
		UserAgent:  cfg.OpenLibraryUserAgent,
		RPS:        cfg.OpenLibraryRPS,
		MaxRetries: cfg.OpenLibraryMaxRetries,
	})

	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService)
	profileService := profile.NewService(profile.NewPostgresRepo(dbPool, cfg.DBTimeout))
	lookupService := lookup.NewService(olClient, lookupCache, cfg.LookupCacheTTL)
	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.DBTimeout), lookupService)
	exchangeService := exchange.NewService(exchange.NewPostgresRepo(dbPool, cfg.DBTimeout), bookService)
	messageService := message.NewService(message.NewPostgresRepo(dbPool, cfg.DBTimeout))

	limiter := httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...)
	go limiter.RunCleanup(ctx)

	router := newRouter(cfg, handlers{
		auth:      auth.NewHTTPHandler(authService),
		users:     user.NewHTTPHandler(userService),
		profiles:  profile.NewHTTPHandler(profileService),
		books:     book.NewHTTPHandler(bookService),
		lookup:    lookup.NewHTTPHandler(lookupService),
		exchanges: exchange.NewHTTPHandler(exchangeService),
		messages:  message.NewHTTPHandler(messageService),
	}, limiter, dbPool.Ping)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}
}

// openCache connects to Redis when REDIS_ADDR is set and falls back to an
// in-process cache otherwise, or when Redis cannot be reached.
func openCache(ctx context.Context, cfg config) cache.Client {
	if cfg.RedisAddr == "" {
		log.Println("lookup cache: in-memory")
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("lookup cache: redis unavailable, using in-memory: addr=%s error=%v", cfg.RedisAddr, err)
		return cache.NewMemoryCache()
	}
	log.Printf("lookup cache: redis addr=%s db=%d", cfg.RedisAddr, cfg.RedisDB)
	return rc
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}
