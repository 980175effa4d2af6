// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth extracts bearer tokens from requests and resolves them to
// users. Token parsing is pure so the unauthenticated path never touches
// the store.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated means the request carries no usable bearer token.
	ErrUnauthenticated = errors.New("auth: missing bearer token")

	// ErrInvalidToken means a token was presented but does not resolve to a user.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Context is the credential extracted from a request.
type Context struct {
	Token string
}

// ParseAuth reads the Authorization header. The scheme match is
// case-insensitive; anything other than a non-empty Bearer token is
// ErrUnauthenticated.
func ParseAuth(h http.Header) (Context, error) {
	raw := strings.TrimSpace(h.Get("Authorization"))
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Context{}, ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Context{}, ErrUnauthenticated
	}
	return Context{Token: token}, nil
}

// User is the identity a token resolves to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Resolver turns a bearer token into a user.
type Resolver interface {
	ResolveUser(ctx context.Context, token string) (*User, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, token string) (*User, error)

func (f ResolverFunc) ResolveUser(ctx context.Context, token string) (*User, error) {
	return f(ctx, token)
}

type contextKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user stored by WithUser, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}
