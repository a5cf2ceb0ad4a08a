package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bookshelf-api/internal/api"
	"github.com/phrazzld/bookshelf-api/internal/api/middleware"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// routerDeps are the collaborators the HTTP surface needs. Optional
// fields may be nil.
type routerDeps struct {
	logger        *slog.Logger
	codec         auth.TokenCodec
	users         store.UserStore
	authenticator api.Authenticator
	catalog       api.BookCatalog

	db             api.Pinger              // optional
	httpMetrics    *metrics.HTTPMetrics    // optional
	metricsHandler http.Handler            // optional
	loginLimiter   *middleware.RateLimiter // optional
}

// requestTimeout bounds every handler's context.
const requestTimeout = 30 * time.Second

// newRouter creates the application router with all routes and middleware.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.TraceMiddleware(d.logger))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	if d.httpMetrics != nil {
		r.Use(d.httpMetrics.Middleware)
	}
	r.Use(middleware.BodyGuard())
	r.Use(middleware.NewAccessGuard(d.codec, d.users).Authenticate)

	health := api.NewHealthHandler(d.db)
	r.Get("/health", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/openapi.yaml", http.StatusFound)
	})
	r.Get("/docs/openapi.yaml", api.ServeOpenAPI)
	if d.metricsHandler != nil {
		r.Handle("/metrics", d.metricsHandler)
	}

	authHandler := api.NewAuthHandler(d.authenticator, d.logger)
	if d.loginLimiter != nil {
		r.With(d.loginLimiter.Middleware).Post("/auth/login", authHandler.Login)
	} else {
		r.Post("/auth/login", authHandler.Login)
	}

	roles := middleware.NewRoleGuard(api.Policy)
	books := api.NewBookHandler(d.catalog, d.logger)
	r.Route("/api/books", func(r chi.Router) {
		r.With(roles.Require(api.OpListBooks)).Get("/", books.ListBooks)
		r.With(roles.Require(api.OpCreateBook)).Post("/", books.CreateBook)
		r.With(roles.Require(api.OpUpdateBook)).Put("/{id}", books.UpdateBook)
		r.With(roles.Require(api.OpDeleteBook)).Delete("/{id}", books.DeleteBook)
	})

	return r
}
