// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"

	"consultblog/internal/auth"
)

// RequireUser rejects requests without a valid bearer token with 401 and
// stores the resolved user in the request context for downstream handlers.
func RequireUser(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := auth.ParseAuth(r.Header)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := resolver.ResolveUser(r.Context(), ac.Token)
			if err != nil {
				slog.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
