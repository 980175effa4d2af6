// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"consultblog/internal/cache"
	"consultblog/internal/markdown"
	"consultblog/internal/metrics"
	"consultblog/internal/models"
	"consultblog/internal/posts"
	"consultblog/internal/render"
)

// Public groups the read-only handlers for published posts. Rendered post
// pages go through the Valkey page cache when one is configured.
type Public struct {
	repo      *posts.Repository
	renderer  *render.Renderer
	pageCache *cache.PageCache
	engine    markdown.Engine
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(repo *posts.Repository, renderer *render.Renderer, pageCache *cache.PageCache, engine markdown.Engine) *Public {
	return &Public{repo: repo, renderer: renderer, pageCache: pageCache, engine: engine}
}

// PostView is a post together with its rendered body.
type PostView struct {
	models.Post
	HTML string `json:"html"`
}

// List returns every published post, newest first.
func (p *Public) List(w http.ResponseWriter, r *http.Request) {
	list, err := p.repo.List(r.Context(), models.StatusPublished)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// published returns the published post for the slug in the URL, writing a
// 404 or 500 and returning nil otherwise.
func (p *Public) published(w http.ResponseWriter, r *http.Request, asJSON bool) *models.Post {
	slug := chi.URLParam(r, "slug")
	post, err := p.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if asJSON {
			writeError(w, http.StatusInternalServerError, "Failed to load post")
		} else {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return nil
	}
	if post == nil || !post.IsPublished() {
		if asJSON {
			writeError(w, http.StatusNotFound, "Post not found")
		} else {
			http.NotFound(w, r)
		}
		return nil
	}
	return post
}

// Show returns a published post as JSON with its rendered HTML.
func (p *Public) Show(w http.ResponseWriter, r *http.Request) {
	post := p.published(w, r, true)
	if post == nil {
		return
	}
	body, err := markdown.RenderWith(p.engine, post.Content)
	if err != nil {
		slog.Error("render post body failed", "slug", post.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render post")
		return
	}
	writeJSON(w, http.StatusOK, PostView{Post: *post, HTML: body})
}

// Page renders the full HTML page of a published post.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := cache.PostKey(chi.URLParam(r, "slug"))

	if p.pageCache != nil {
		cached, ok := p.pageCache.Get(ctx, key)
		metrics.ObserveCache("page", ok)
		if ok {
			writeHTML(w, cached)
			return
		}
	}

	post := p.published(w, r, false)
	if post == nil {
		return
	}
	body, err := markdown.RenderWith(p.engine, post.Content)
	if err != nil {
		slog.Error("render post body failed", "slug", post.Slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	page, err := p.renderer.Post(*post, body)
	if err != nil {
		slog.Error("render post page failed", "slug", post.Slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pageCache != nil {
		p.pageCache.Set(ctx, key, page)
	}
	writeHTML(w, page)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
