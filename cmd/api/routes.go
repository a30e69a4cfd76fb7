package main

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"bookreviews/internal/auth"
	"bookreviews/internal/book"
	"bookreviews/internal/config"
	"bookreviews/internal/httpx"
	"bookreviews/internal/metrics"
	"bookreviews/internal/popular"
	"bookreviews/internal/review"
	"bookreviews/internal/session"
	"bookreviews/internal/user"
)

type handlers struct {
	users    *user.HTTPHandler
	auth     *auth.HTTPHandler
	sessions *session.HTTPHandler
	books    *book.HTTPHandler
	reviews  *review.HTTPHandler
	popular  *popular.HTTPHandler
}

// pinger reports whether the database is reachable.
type pinger func(ctx context.Context) error

func newRouter(h handlers, requireAuth httpx.Middleware, ping pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ping(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Database not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /users/register", h.users.RegisterUser)
	mux.HandleFunc("POST /users/login", h.auth.Login)
	mux.HandleFunc("POST /auth/refresh", h.auth.RefreshToken)
	mux.HandleFunc("GET /books/popular", h.popular.Popular)

	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(fn))
	}
	protected("POST /auth/logout", h.auth.Logout)
	protected("GET /me", h.users.GetCurrentUser)
	protected("GET /me/sessions", h.sessions.ListSessions)
	protected("DELETE /me/sessions/{id}", h.sessions.DeleteSession)
	protected("GET /books", h.books.Search)
	protected("GET /books/{isbn}", h.reviews.GetBookPage)
	protected("GET /books/{isbn}/metadata", h.books.Metadata)
	protected("POST /books/{isbn}/reviews", h.reviews.Create)

	return mux
}

// newHandler wraps the router in the middleware stack, outermost first.
func newHandler(cfg config.ServerConfig, mux *http.ServeMux, limiter *httpx.RateLimiter, proxies []netip.Prefix) http.Handler {
	return httpx.Chain(httpx.MetricsMiddleware(mux),
		httpx.RecoveryMiddleware,
		httpx.ClientIPMiddleware(proxies),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		limiter.Middleware,
	)
}
