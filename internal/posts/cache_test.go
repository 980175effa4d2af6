// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package posts

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"consultblog/internal/models"
)

func post(slug string, status models.Status, published *time.Time) models.Post {
	return models.Post{
		ID:          uuid.New(),
		Slug:        slug,
		Status:      status,
		PublishedAt: published,
		Tags:        []string{},
		CreatedAt:   fixedNow,
	}
}

func TestCacheUnloaded(t *testing.T) {
	c := NewCache()
	if _, ok := c.Admin(); ok {
		t.Error("admin list should not be loaded")
	}
	if _, ok := c.Public(); ok {
		t.Error("public list should not be loaded")
	}
	// Writes against unloaded lists are no-ops.
	c.Upsert(post("a", models.StatusPublished, &fixedNow))
	if _, ok := c.Public(); ok {
		t.Error("Upsert should not load the public list")
	}
}

func TestCacheSetPublicDropsDrafts(t *testing.T) {
	c := NewCache()
	c.SetPublic([]models.Post{
		post("pub", models.StatusPublished, &fixedNow),
		post("draft", models.StatusDraft, nil),
	})
	got, ok := c.Public()
	if !ok || len(got) != 1 || got[0].Slug != "pub" {
		t.Errorf("Public = %v, %v", got, ok)
	}
}

func TestCacheUpsert(t *testing.T) {
	c := NewCache()
	older := fixedNow.Add(-time.Hour)
	a := post("a", models.StatusPublished, &older)
	c.SetAdmin([]models.Post{a})
	c.SetPublic([]models.Post{a})

	b := post("b", models.StatusPublished, &fixedNow)
	c.Upsert(b)

	admin, _ := c.Admin()
	if len(admin) != 2 || admin[0].Slug != "b" {
		t.Fatalf("admin after insert = %v", slugs(admin))
	}

	a.Status, a.PublishedAt = models.StatusDraft, nil
	c.Upsert(a)

	admin, _ = c.Admin()
	if len(admin) != 2 {
		t.Errorf("admin should still hold both posts, got %v", slugs(admin))
	}
	public, _ := c.Public()
	if len(public) != 1 || public[0].Slug != "b" {
		t.Errorf("public should drop the unpublished post, got %v", slugs(public))
	}
}

func TestCacheRemove(t *testing.T) {
	c := NewCache()
	a := post("a", models.StatusPublished, &fixedNow)
	b := post("b", models.StatusPublished, &fixedNow)
	c.SetAdmin([]models.Post{a, b})
	c.SetPublic([]models.Post{a, b})

	c.RemovePublic(a.ID)
	admin, _ := c.Admin()
	public, _ := c.Public()
	if len(admin) != 2 || len(public) != 1 {
		t.Errorf("RemovePublic: admin=%v public=%v", slugs(admin), slugs(public))
	}

	c.Remove(b.ID)
	admin, _ = c.Admin()
	public, _ = c.Public()
	if len(admin) != 1 || len(public) != 0 {
		t.Errorf("Remove: admin=%v public=%v", slugs(admin), slugs(public))
	}
}

func TestCacheFind(t *testing.T) {
	c := NewCache()
	a := post("growth-plan", models.StatusDraft, nil)
	c.SetAdmin([]models.Post{a})

	if got, ok := c.FindBySlug("Growth-Plan"); !ok || got.ID != a.ID {
		t.Errorf("FindBySlug = %v, %v", got.Slug, ok)
	}
	if _, ok := c.FindBySlug("other"); ok {
		t.Error("unexpected hit")
	}
	if got, ok := c.FindByID(a.ID); !ok || got.Slug != a.Slug {
		t.Errorf("FindByID = %v, %v", got.Slug, ok)
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache()
	a := post("a", models.StatusDraft, nil)
	a.Tags = []string{"x"}
	c.SetAdmin([]models.Post{a})

	got, _ := c.Admin()
	got[0].Tags[0] = "mutated"
	got[0].Title = "mutated"

	again, _ := c.Admin()
	if again[0].Tags[0] != "x" || again[0].Title != "" {
		t.Error("cached list was mutated through a returned copy")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache()
	c.SetAdmin([]models.Post{post("a", models.StatusDraft, nil)})
	c.SetPublic(nil)
	c.Invalidate()

	if _, ok := c.Admin(); ok {
		t.Error("admin list should be unloaded")
	}
	if _, ok := c.Public(); ok {
		t.Error("public list should be unloaded")
	}
	if _, ok := c.FindBySlug("a"); ok {
		t.Error("invalidated cache should not find posts")
	}
}

func slugs(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}
