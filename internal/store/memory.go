// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"consultblog/internal/models"
)

// Memory is an in-process Backend. It enforces the same slug uniqueness and
// ordering as the real stores and is used in development and tests.
type Memory struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]models.Post
	now   func() time.Time
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		posts: make(map[uuid.UUID]models.Post),
		now:   time.Now,
	}
}

// clonePost copies p so callers never share the tags slice with the map.
func clonePost(p models.Post) *models.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p
}

func (m *Memory) ListPosts(_ context.Context, opts ListOptions) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		out = append(out, *clonePost(p))
	}
	models.SortNewestFirst(out)
	return out, nil
}

func (m *Memory) FindPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.bySlug(slug); ok {
		return clonePost(p), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) bySlug(slug string) (models.Post, bool) {
	for _, p := range m.posts {
		if strings.EqualFold(p.Slug, slug) {
			return p, true
		}
	}
	return models.Post{}, false
}

// slugTaken reports whether another post than id already uses slug.
func (m *Memory) slugTaken(slug string, id uuid.UUID) bool {
	p, ok := m.bySlug(slug)
	return ok && p.ID != id
}

func (m *Memory) FindPostByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (m *Memory) InsertPost(_ context.Context, pl models.PostPayload) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slugTaken(pl.Slug, uuid.Nil) {
		return nil, ErrSlugTaken
	}
	now := m.now()
	p := models.Post{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	pl.Apply(&p)
	m.posts[p.ID] = *clonePost(p)
	return clonePost(p), nil
}

func (m *Memory) UpdatePost(_ context.Context, id uuid.UUID, pl models.PostPayload) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.slugTaken(pl.Slug, id) {
		return nil, ErrSlugTaken
	}
	pl.Apply(&p)
	p.UpdatedAt = m.now()
	m.posts[id] = *clonePost(p)
	return clonePost(p), nil
}

func (m *Memory) DeletePost(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

func (m *Memory) InsertPostFields(_ context.Context, f Fields) ([]models.Post, error) {
	cols, err := f.columns()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p := models.Post{
		ID:        uuid.New(),
		Title:     "Untitled Post",
		Tags:      []string{},
		ReadTime:  "1 min read",
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyColumns(&p, cols)
	if p.Slug == "" {
		return nil, &FieldError{Column: "slug", Reason: "must not be empty"}
	}
	if m.slugTaken(p.Slug, uuid.Nil) {
		return nil, ErrSlugTaken
	}
	m.posts[p.ID] = *clonePost(p)
	return []models.Post{*clonePost(p)}, nil
}

func (m *Memory) UpdatePostFieldsBySlug(_ context.Context, slug string, f Fields) ([]models.Post, error) {
	cols, err := f.columns()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.bySlug(slug)
	if !ok {
		return []models.Post{}, nil
	}
	applyColumns(&p, cols)
	if m.slugTaken(p.Slug, p.ID) {
		return nil, ErrSlugTaken
	}
	p.UpdatedAt = m.now()
	m.posts[p.ID] = *clonePost(p)
	return []models.Post{*clonePost(p)}, nil
}

// applyColumns sets validated column values on p.
func applyColumns(p *models.Post, cols []column) {
	for _, c := range cols {
		switch c.name {
		case "title":
			p.Title = c.value.(string)
		case "slug":
			p.Slug = c.value.(string)
		case "excerpt":
			p.Excerpt = c.value.(string)
		case "content":
			p.Content = c.value.(string)
		case "category":
			p.Category = c.value.(*string)
		case "tags":
			p.Tags = c.value.([]string)
		case "featured":
			p.Featured = c.value.(bool)
		case "featured_image":
			p.FeaturedImage = c.value.(*string)
		case "featured_image_alt":
			p.FeaturedImageAlt = c.value.(*string)
		case "author":
			p.Author = c.value.(string)
		case "read_time":
			p.ReadTime = c.value.(string)
		case "status":
			p.Status = c.value.(models.Status)
		case "published_at":
			p.PublishedAt = c.value.(*time.Time)
		case "meta_title":
			p.MetaTitle = c.value.(*string)
		case "meta_description":
			p.MetaDescription = c.value.(*string)
		}
	}
}
