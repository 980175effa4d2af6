// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consultblog/internal/auth"
	"consultblog/internal/models"
	"consultblog/internal/store"
)

// BlogAllow lists the methods the blog endpoint answers.
const BlogAllow = "GET, POST, PUT, OPTIONS"

// Syncer is told about every row the blog endpoint writes so cached post
// lists and pages do not go stale.
type Syncer interface {
	Sync(ctx context.Context, p models.Post, addressed string)
}

// Blog serves /blog/{slug} for external editor clients. Reads use the
// anonymous credential; writes act as the user owning the bearer token.
type Blog struct {
	opener   store.Opener
	resolver auth.Resolver
	sync     Syncer
}

// NewBlog creates the blog endpoint handler. sync may be nil.
func NewBlog(opener store.Opener, resolver auth.Resolver, sync Syncer) *Blog {
	return &Blog{opener: opener, resolver: resolver, sync: sync}
}

func (b *Blog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		b.get(w, r)
	case http.MethodPut:
		b.write(w, r, http.StatusOK)
	case http.MethodPost:
		b.write(w, r, http.StatusCreated)
	default:
		w.Header().Set("Allow", BlogAllow)
		writeError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" Not Allowed")
	}
}

func (b *Blog) get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, err := b.opener.Anonymous().FindPostBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		slog.Error("blog get failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, storeMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// write handles PUT (update by slug) and POST (insert). The store is not
// contacted until the token has resolved to a user.
func (b *Blog) write(w http.ResponseWriter, r *http.Request, success int) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	creds, err := auth.ParseAuth(r.Header)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := b.resolver.ResolveUser(ctx, creds.Token)
	if err != nil || user == nil {
		if err != nil && !errors.Is(err, auth.ErrInvalidToken) {
			slog.Warn("blog token resolution failed", "slug", slug, "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	backend := b.opener.WithToken(creds.Token)

	fields, err := store.DecodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var rows []models.Post
	if r.Method == http.MethodPut {
		rows, err = backend.UpdatePostFieldsBySlug(ctx, slug, fields)
	} else {
		rows, err = backend.InsertPostFields(ctx, fields)
	}
	if err != nil {
		slog.Error("blog write failed", "method", r.Method, "slug", slug, "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, storeMessage(err))
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	slog.Info("blog post written", "method", r.Method, "slug", rows[0].Slug, "user", user.ID)
	if b.sync != nil {
		addressed := ""
		if r.Method == http.MethodPut {
			addressed = slug
		}
		for _, p := range rows {
			b.sync.Sync(ctx, p, addressed)
		}
	}
	writeJSON(w, success, rows[0])
}

// storeMessage is the message reported to clients for a failed store call:
// the store's own message when it sent one.
func storeMessage(err error) string {
	var apiErr *store.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var fieldErr *store.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Error()
	}
	return err.Error()
}
