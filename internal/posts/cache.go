// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package posts

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"consultblog/internal/models"
)

// Cache holds the last loaded admin list (every post) and public list
// (published posts only). A list that was never loaded, or was invalidated,
// reports ok=false. Lists have no TTL; the repository keeps them current
// on every write.
type Cache struct {
	mu           sync.RWMutex
	admin        []models.Post
	public       []models.Post
	adminLoaded  bool
	publicLoaded bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out
}

// Admin returns a copy of the admin list.
func (c *Cache) Admin() ([]models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.adminLoaded {
		return nil, false
	}
	return clonePosts(c.admin), true
}

// Public returns a copy of the public list.
func (c *Cache) Public() ([]models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.publicLoaded {
		return nil, false
	}
	return clonePosts(c.public), true
}

// SetAdmin replaces the admin list.
func (c *Cache) SetAdmin(posts []models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admin = clonePosts(posts)
	c.adminLoaded = true
}

// SetPublic replaces the public list. Unpublished posts are dropped.
func (c *Cache) SetPublic(posts []models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.public = slices.DeleteFunc(clonePosts(posts), func(p models.Post) bool { return !p.IsPublished() })
	c.publicLoaded = true
}

// Upsert inserts or replaces p in every loaded list it belongs to. A post
// that is not published is removed from the public list.
func (c *Cache) Upsert(p models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adminLoaded {
		c.admin = upsert(c.admin, p)
	}
	if c.publicLoaded {
		if p.IsPublished() {
			c.public = upsert(c.public, p)
		} else {
			c.public = without(c.public, p.ID)
		}
	}
}

func upsert(list []models.Post, p models.Post) []models.Post {
	p.Tags = slices.Clone(p.Tags)
	list = without(list, p.ID)
	list = append(list, p)
	models.SortNewestFirst(list)
	return list
}

func without(list []models.Post, id uuid.UUID) []models.Post {
	return slices.DeleteFunc(list, func(p models.Post) bool { return p.ID == id })
}

// RemovePublic drops id from the public list only.
func (c *Cache) RemovePublic(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.public = without(c.public, id)
}

// Remove drops id from both lists.
func (c *Cache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admin = without(c.admin, id)
	c.public = without(c.public, id)
}

// FindBySlug looks slug up case-insensitively in the loaded lists, admin first.
func (c *Cache) FindBySlug(slug string) (models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, list := range [][]models.Post{c.admin, c.public} {
		for _, p := range list {
			if strings.EqualFold(p.Slug, slug) {
				p.Tags = slices.Clone(p.Tags)
				return p, true
			}
		}
	}
	return models.Post{}, false
}

// FindByID looks id up in the loaded lists.
func (c *Cache) FindByID(id uuid.UUID) (models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, list := range [][]models.Post{c.admin, c.public} {
		for _, p := range list {
			if p.ID == id {
				p.Tags = slices.Clone(p.Tags)
				return p, true
			}
		}
	}
	return models.Post{}, false
}

func (c *Cache) forgetPublic() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.public, c.publicLoaded = nil, false
}

// Invalidate forgets both lists.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admin, c.public = nil, nil
	c.adminLoaded, c.publicLoaded = false, false
	slog.Debug("post cache cleared")
}
