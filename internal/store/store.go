// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store talks to the table store that holds blog posts. The default
// backend is a PostgREST-compatible HTTP API; a direct Postgres backend and an
// in-process memory backend implement the same Backend contract.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"consultblog/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("store: no rows")

	// ErrSlugTaken is returned when a write would duplicate an existing slug.
	ErrSlugTaken = errors.New("store: slug already exists")
)

// ListOptions filters ListPosts. A zero Status lists every post.
type ListOptions struct {
	Status models.Status
}

// Backend is one authenticated view of the post table.
type Backend interface {
	// ListPosts returns posts ordered by published_at descending (nulls last),
	// then created_at descending.
	ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error)
	// FindPostBySlug matches slug case-insensitively. Returns ErrNotFound on a miss.
	FindPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	InsertPost(ctx context.Context, p models.PostPayload) (*models.Post, error)
	// UpdatePost returns ErrNotFound when id does not exist.
	UpdatePost(ctx context.Context, id uuid.UUID, p models.PostPayload) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	// InsertPostFields and UpdatePostFieldsBySlug write raw columns as sent by
	// an external editor and return every affected row.
	InsertPostFields(ctx context.Context, f Fields) ([]models.Post, error)
	UpdatePostFieldsBySlug(ctx context.Context, slug string, f Fields) ([]models.Post, error)
}

// Opener hands out backends scoped to a credential.
type Opener interface {
	// Anonymous uses the public API key; row-level policies apply.
	Anonymous() Backend
	// Service uses the service-role key and bypasses row-level policies.
	Service() Backend
	// WithToken acts as the user the bearer token belongs to.
	WithToken(token string) Backend
}

// Shared returns an Opener that hands out b for every credential. Used by
// backends that enforce no per-user policies of their own.
func Shared(b Backend) Opener {
	return sharedOpener{b}
}

type sharedOpener struct{ b Backend }

func (o sharedOpener) Anonymous() Backend { return o.b }
func (o sharedOpener) Service() Backend { return o.b }
func (o sharedOpener) WithToken(_ string) Backend { return o.b }

// WithTimeout bounds every call made through b to d.
func WithTimeout(b Backend, d time.Duration) Backend {
	if d <= 0 {
		return b
	}
	return &timeoutBackend{next: b, d: d}
}

type timeoutBackend struct {
	next Backend
	d    time.Duration
}

func (t *timeoutBackend) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.ListPosts(ctx, opts)
}

func (t *timeoutBackend) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.FindPostBySlug(ctx, slug)
}

func (t *timeoutBackend) FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.FindPostByID(ctx, id)
}

func (t *timeoutBackend) InsertPost(ctx context.Context, p models.PostPayload) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.InsertPost(ctx, p)
}

func (t *timeoutBackend) UpdatePost(ctx context.Context, id uuid.UUID, p models.PostPayload) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.UpdatePost(ctx, id, p)
}

func (t *timeoutBackend) DeletePost(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.DeletePost(ctx, id)
}

func (t *timeoutBackend) InsertPostFields(ctx context.Context, f Fields) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.InsertPostFields(ctx, f)
}

func (t *timeoutBackend) UpdatePostFieldsBySlug(ctx context.Context, slug string, f Fields) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.UpdatePostFieldsBySlug(ctx, slug, f)
}

// TimeoutOpener wraps every backend o hands out with WithTimeout.
func TimeoutOpener(o Opener, d time.Duration) Opener {
	return timeoutOpener{next: o, d: d}
}

type timeoutOpener struct {
	next Opener
	d    time.Duration
}

func (o timeoutOpener) Anonymous() Backend { return WithTimeout(o.next.Anonymous(), o.d) }
func (o timeoutOpener) Service() Backend { return WithTimeout(o.next.Service(), o.d) }
func (o timeoutOpener) WithToken(token string) Backend {
	return WithTimeout(o.next.WithToken(token), o.d)
}
