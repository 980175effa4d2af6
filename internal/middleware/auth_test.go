// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"consultblog/internal/auth"
)

func TestRequireUser(t *testing.T) {
	resolver := auth.ResolverFunc(func(_ context.Context, token string) (*auth.User, error) {
		if token != "good" {
			return nil, auth.ErrInvalidToken
		}
		return &auth.User{ID: "u-1", Email: "editor@example.com"}, nil
	})

	var seen *auth.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireUser(resolver)(inner)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusNoContent {
				if seen == nil || seen.ID != "u-1" {
					t.Errorf("user in context: got %+v", seen)
				}
			} else if seen != nil {
				t.Error("next handler should not run")
			}
		})
	}
}
