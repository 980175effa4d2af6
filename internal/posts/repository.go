// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package posts is the post repository: it normalizes editor input, writes
// it through a store backend and keeps the in-process post lists current.
package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"consultblog/internal/metrics"
	"consultblog/internal/models"
	"consultblog/internal/store"
	"consultblog/internal/storage"
)

// ErrStorageDisabled is returned by UploadImage when no image storage is configured.
var ErrStorageDisabled = errors.New("posts: image storage not configured")

// Error is a failed repository operation. Key identifies the post (id,
// slug or file name) the operation was about.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("posts: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("posts: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ImageStore is where uploaded images go.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
	// ExtractKey reports the object key behind a URL this store issued.
	ExtractKey(url string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// Invalidator is told about writes so derived caches (rendered pages, the
// sitemap) can drop stale entries.
type Invalidator interface {
	InvalidatePost(ctx context.Context, slug string)
	InvalidateAll(ctx context.Context)
}

// Config holds the optional collaborators of a Repository.
type Config struct {
	Images        ImageStore // nil disables UploadImage
	Invalidator   Invalidator
	DefaultAuthor string
	Now           func() time.Time
}

// Repository is the post repository client.
type Repository struct {
	store  store.Backend
	cache  *Cache
	images ImageStore
	inval  Invalidator
	opts   NormalizeOptions
}

// New creates a repository writing through b. A nil cache gets a fresh one.
func New(b store.Backend, cache *Cache, cfg Config) *Repository {
	if cache == nil {
		cache = NewCache()
	}
	return &Repository{
		store:  b,
		cache:  cache,
		images: cfg.Images,
		inval:  cfg.Invalidator,
		opts:   NormalizeOptions{DefaultAuthor: cfg.DefaultAuthor, Now: cfg.Now},
	}
}

// Cache returns the repository's post cache.
func (r *Repository) Cache() *Cache {
	return r.cache
}

// fail logs and records a failed operation and wraps err.
func (r *Repository) fail(op, key string, err error) error {
	result := metrics.ResultError
	if errors.Is(err, store.ErrNotFound) {
		result = metrics.ResultNotFound
	}
	metrics.ObserveOp(op, result)
	slog.Error("post repository operation failed", "op", op, "key", key, "error", err)
	return &Error{Op: op, Key: key, Err: err}
}

// List returns posts newest first. With models.StatusPublished it returns
// the public list, served from the cache once loaded. Otherwise it loads
// every post from the store and refreshes the admin list.
func (r *Repository) List(ctx context.Context, status models.Status) ([]models.Post, error) {
	if status == models.StatusPublished {
		if posts, ok := r.cache.Public(); ok {
			metrics.ObserveCache("public_list", true)
			return posts, nil
		}
		metrics.ObserveCache("public_list", false)
		return r.refreshPublic(ctx)
	}

	posts, err := r.store.ListPosts(ctx, store.ListOptions{Status: status})
	if err != nil {
		return nil, r.fail("list", string(status), err)
	}
	if status == "" {
		r.cache.SetAdmin(posts)
	}
	metrics.ObserveOp("list", metrics.ResultOK)
	return posts, nil
}

func (r *Repository) refreshPublic(ctx context.Context) ([]models.Post, error) {
	posts, err := r.store.ListPosts(ctx, store.ListOptions{Status: models.StatusPublished})
	if err != nil {
		return nil, r.fail("list", string(models.StatusPublished), err)
	}
	r.cache.SetPublic(posts)
	metrics.ObserveOp("list", metrics.ResultOK)
	return posts, nil
}

// GetBySlug finds a post by slug, case-insensitively, consulting the cached
// lists first. A missing post is (nil, nil).
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if p, ok := r.cache.FindBySlug(slug); ok {
		metrics.ObserveCache("post", true)
		return &p, nil
	}
	metrics.ObserveCache("post", false)

	p, err := r.store.FindPostBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		metrics.ObserveOp("get_by_slug", metrics.ResultNotFound)
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get_by_slug", slug, err)
	}
	metrics.ObserveOp("get_by_slug", metrics.ResultOK)
	return p, nil
}

// GetByID finds a post by id. A missing post is (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := r.store.FindPostByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		metrics.ObserveOp("get_by_id", metrics.ResultNotFound)
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get_by_id", id.String(), err)
	}
	metrics.ObserveOp("get_by_id", metrics.ResultOK)
	return p, nil
}

// Create normalizes and inserts a new post.
func (r *Repository) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	payload := Normalize(in, nil, r.opts)

	p, err := r.store.InsertPost(ctx, payload)
	if err != nil {
		return nil, r.fail("create", payload.Slug, err)
	}
	metrics.ObserveOp("create", metrics.ResultOK)
	slog.Info("post created", "id", p.ID, "slug", p.Slug, "status", p.Status)

	r.cache.Upsert(*p)
	if p.IsPublished() {
		r.refreshPublicAfterWrite(ctx, "create")
	}
	r.invalidate(ctx, p.Slug)
	return p, nil
}

// Update normalizes in against the stored row and writes it. Updating an
// unknown id fails with an error wrapping store.ErrNotFound.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in models.PostInput) (*models.Post, error) {
	existing, err := r.store.FindPostByID(ctx, id)
	if err != nil {
		return nil, r.fail("update", id.String(), err)
	}

	payload := Normalize(in, existing, r.opts)
	p, err := r.store.UpdatePost(ctx, id, payload)
	if err != nil {
		return nil, r.fail("update", id.String(), err)
	}
	metrics.ObserveOp("update", metrics.ResultOK)
	slog.Info("post updated", "id", p.ID, "slug", p.Slug, "status", p.Status)

	r.cache.Upsert(*p)
	if p.IsPublished() {
		r.refreshPublicAfterWrite(ctx, "update")
	} else {
		r.cache.RemovePublic(p.ID)
	}
	if existing.Slug != p.Slug {
		r.invalidate(ctx, existing.Slug)
	}
	r.invalidate(ctx, p.Slug)
	return p, nil
}

// Delete removes a post from the store and from both cached lists.
// A featured image hosted in the image store is removed with it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var existing *models.Post
	if p, ok := r.cache.FindByID(id); ok {
		existing = &p
	} else if p, err := r.store.FindPostByID(ctx, id); err == nil {
		existing = p
	}
	var slug string
	if existing != nil {
		slug = existing.Slug
	}

	if err := r.store.DeletePost(ctx, id); err != nil {
		return r.fail("delete", id.String(), err)
	}
	metrics.ObserveOp("delete", metrics.ResultOK)
	slog.Info("post deleted", "id", id, "slug", slug)

	r.cache.Remove(id)
	if slug != "" {
		r.invalidate(ctx, slug)
	}
	if existing != nil {
		r.deleteImage(ctx, existing.FeaturedImage)
	}
	return nil
}

// deleteImage removes an uploaded image. Failures leave an orphaned object
// and are only logged.
func (r *Repository) deleteImage(ctx context.Context, url *string) {
	if r.images == nil || url == nil {
		return
	}
	key, ok := r.images.ExtractKey(*url)
	if !ok {
		return
	}
	if err := r.images.Delete(ctx, key); err != nil {
		slog.Warn("featured image delete failed", "key", key, "error", err)
		return
	}
	slog.Info("featured image deleted", "key", key)
}

// UploadImage stores an image under a collision-resistant key derived from
// the file name and returns its public URL.
func (r *Repository) UploadImage(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	if r.images == nil {
		return "", r.fail("upload_image", filename, ErrStorageDisabled)
	}

	key := storage.ObjectKey(filename, r.opts.now(), "")
	if err := r.images.Upload(ctx, key, contentType, body, size); err != nil {
		return "", r.fail("upload_image", filename, err)
	}
	metrics.ObserveOp("upload_image", metrics.ResultOK)
	slog.Info("image uploaded", "key", key, "size", size)
	return r.images.FileURL(key), nil
}

// Invalidate drops every cached list and rendered page.
func (r *Repository) Invalidate(ctx context.Context) {
	r.cache.Invalidate()
	if r.inval != nil {
		r.inval.InvalidateAll(ctx)
	}
}

// Sync brings the cached lists and pages in line with a post written
// outside the repository, such as through the blog endpoint. addressed is
// the slug the write was made against and may differ from p.Slug.
func (r *Repository) Sync(ctx context.Context, p models.Post, addressed string) {
	r.cache.Upsert(p)
	if p.IsPublished() {
		r.refreshPublicAfterWrite(ctx, "sync")
	} else {
		r.cache.RemovePublic(p.ID)
	}
	if addressed != "" && !strings.EqualFold(addressed, p.Slug) {
		r.invalidate(ctx, addressed)
	}
	r.invalidate(ctx, p.Slug)
}

// refreshPublicAfterWrite reloads the public list. The write already
// succeeded, so a failed reload only drops the stale list.
func (r *Repository) refreshPublicAfterWrite(ctx context.Context, op string) {
	if _, err := r.refreshPublic(ctx); err != nil {
		slog.Warn("public post list refresh failed", "op", op, "error", err)
		r.cache.forgetPublic()
	}
}

func (r *Repository) invalidate(ctx context.Context, slug string) {
	if r.inval != nil {
		r.inval.InvalidatePost(ctx, slug)
	}
}
