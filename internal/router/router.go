// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Routes are
// split into the public site, the public JSON API, the bearer-authenticated
// admin API, and the /blog/{slug} endpoint used by external editors.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"consultblog/internal/auth"
	"consultblog/internal/handlers"
	"consultblog/internal/metrics"
	"consultblog/internal/middleware"
)

// Handlers are the handler groups the router dispatches to.
type Handlers struct {
	Blog   *handlers.Blog
	Public *handlers.Public
	Admin  *handlers.Admin
	SEO    *handlers.SEO
}

// Options configure the middleware chains.
type Options struct {
	BlogOrigin   string   // single origin allowed on /blog/{slug}
	AdminOrigins []string // origins allowed on /api/admin
	Resolver     auth.Resolver
	Limiter      *middleware.RateLimiter // nil disables write rate limiting
	HSTS         bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders(opts.HSTS))

	writes := func(next http.Handler) http.Handler { return next }
	if opts.Limiter != nil {
		writes = opts.Limiter.Writes
	}

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/sitemap.xml", h.SEO.Sitemap)
	r.Get("/robots.txt", h.SEO.Robots)
	r.Get("/posts/{slug}", h.Public.Page)

	// Every method goes to the blog handler so it can answer 405 itself
	// with the CORS headers in place.
	r.With(middleware.FixedCORS(opts.BlogOrigin), writes).Handle("/blog/{slug}", h.Blog)

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", h.Public.List)
		r.Get("/posts/{slug}", h.Public.Show)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminCORS(opts.AdminOrigins))
			r.Use(middleware.RequireUser(opts.Resolver))
			r.Use(writes)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.Admin.List)
				r.Post("/", h.Admin.Create)
				r.Put("/{id}", h.Admin.Update)
				r.Delete("/{id}", h.Admin.Delete)
			})
			r.Post("/images", h.Admin.UploadImage)
			r.Post("/preview", h.Admin.Preview)
			r.Post("/cache/invalidate", h.Admin.InvalidateCache)
		})
	})

	return r
}
