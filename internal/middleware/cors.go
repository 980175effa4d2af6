// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/cors"
)

// Fixed CORS values sent by FixedCORS.
const (
	CORSAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	CORSAllowHeaders = "Content-Type, Authorization"
	CORSMaxAge       = 86400
)

// FixedCORS sets the same CORS header set on every response, whatever the
// method or outcome, naming a single allowed origin. Preflight handling is
// left to the wrapped handler.
func FixedCORS(origin string) func(http.Handler) http.Handler {
	maxAge := strconv.Itoa(CORSMaxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
			h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			h.Add("Vary", "Origin")
			next.ServeHTTP(w, r)
		})
	}
}

// AdminCORS allows the listed origins to call the admin API with bearer
// tokens. An empty list disables cross-origin access.
func AdminCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: strings.Split(CORSAllowMethods, ", "),
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         CORSMaxAge,
	})
}
