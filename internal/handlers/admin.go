// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"consultblog/internal/markdown"
	"consultblog/internal/models"
	"consultblog/internal/posts"
	"consultblog/internal/readtime"
	"consultblog/internal/store"
)

// maxUploadBytes bounds image uploads.
const maxUploadBytes = 10 << 20

// Admin groups the authenticated JSON API used by the editor.
type Admin struct {
	repo   *posts.Repository
	engine markdown.Engine
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(repo *posts.Repository, engine markdown.Engine) *Admin {
	return &Admin{repo: repo, engine: engine}
}

// writeRepoError maps repository failures onto HTTP statuses.
func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, store.ErrSlugTaken):
		writeError(w, http.StatusConflict, "A post with this slug already exists")
	case errors.Is(err, posts.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, "Image storage is not configured")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// List returns every post, drafts included.
func (a *Admin) List(w http.ResponseWriter, r *http.Request) {
	list, err := a.repo.List(r.Context(), "")
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create normalizes and stores a new post.
func (a *Admin) Create(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p, err := a.repo.Create(r.Context(), in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return uuid.Nil, false
	}
	return id, true
}

// Update normalizes and stores an edited post.
func (a *Admin) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in models.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p, err := a.repo.Update(r.Context(), id, in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a post.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.repo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores the multipart "file" field and returns its public URL.
func (a *Admin) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "Only image uploads are allowed")
		return
	}

	url, err := a.repo.UploadImage(r.Context(), header.Filename, contentType, file, header.Size)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

type previewRequest struct {
	Content string `json:"content"`
}

type previewResponse struct {
	HTML     string `json:"html"`
	ReadTime string `json:"read_time"`
	Excerpt  string `json:"excerpt"`
}

// Preview renders markdown the way the public page will.
func (a *Admin) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	body, err := markdown.RenderWith(a.engine, req.Content)
	if err != nil {
		slog.Error("preview render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render preview")
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		HTML:     body,
		ReadTime: readtime.Estimate(req.Content),
		Excerpt:  posts.Excerpt(req.Content),
	})
}

// InvalidateCache drops the cached post lists and every cached page.
func (a *Admin) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	a.repo.Invalidate(r.Context())
	slog.Info("caches invalidated")
	w.WriteHeader(http.StatusNoContent)
}
