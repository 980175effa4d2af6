// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the publishing state of a post. There are only two.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus maps any value other than "published" to draft.
func ParseStatus(s string) Status {
	if Status(strings.ToLower(strings.TrimSpace(s))) == StatusPublished {
		return StatusPublished
	}
	return StatusDraft
}

// Post is a blog post row as stored. ID and the timestamps are assigned by the store.
type Post struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `json:"content"`
	Category         *string    `json:"category"`
	Tags             []string   `json:"tags"`
	Featured         bool       `json:"featured"`
	FeaturedImage    *string    `json:"featured_image"`
	FeaturedImageAlt *string    `json:"featured_image_alt"`
	Author           string     `json:"author"`
	ReadTime         string     `json:"read_time"`
	Status           Status     `json:"status"`
	PublishedAt      *time.Time `json:"published_at"`
	MetaTitle        *string    `json:"meta_title"`
	MetaDescription  *string    `json:"meta_description"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// sortTime is published_at when set, created_at otherwise.
func (p *Post) sortTime() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// SortNewestFirst orders posts by published_at descending, falling back to
// created_at for posts that were never published.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if (a.PublishedAt != nil) != (b.PublishedAt != nil) {
			return a.PublishedAt != nil
		}
		return a.sortTime().After(b.sortTime())
	})
}

// PostPayload is the normalized shape written to the store. It carries every
// column except the ones the store manages itself.
type PostPayload struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `json:"content"`
	Category         *string    `json:"category"`
	Tags             []string   `json:"tags"`
	Featured         bool       `json:"featured"`
	FeaturedImage    *string    `json:"featured_image"`
	FeaturedImageAlt *string    `json:"featured_image_alt"`
	Author           string     `json:"author"`
	ReadTime         string     `json:"read_time"`
	Status           Status     `json:"status"`
	PublishedAt      *time.Time `json:"published_at"`
	MetaTitle        *string    `json:"meta_title"`
	MetaDescription  *string    `json:"meta_description"`
}

// Apply copies the payload onto p, leaving id and timestamps untouched.
func (pl PostPayload) Apply(p *Post) {
	p.Title = pl.Title
	p.Slug = pl.Slug
	p.Excerpt = pl.Excerpt
	p.Content = pl.Content
	p.Category = pl.Category
	p.Tags = pl.Tags
	p.Featured = pl.Featured
	p.FeaturedImage = pl.FeaturedImage
	p.FeaturedImageAlt = pl.FeaturedImageAlt
	p.Author = pl.Author
	p.ReadTime = pl.ReadTime
	p.Status = pl.Status
	p.PublishedAt = pl.PublishedAt
	p.MetaTitle = pl.MetaTitle
	p.MetaDescription = pl.MetaDescription
}

// PostInput is what the editor submits. Every field is optional; blanks are
// filled in during normalization.
type PostInput struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `json:"content"`
	Category         string     `json:"category"`
	Tags             TagList    `json:"tags"`
	Featured         bool       `json:"featured"`
	FeaturedImage    string     `json:"featured_image"`
	FeaturedImageAlt string     `json:"featured_image_alt"`
	Author           string     `json:"author"`
	ReadTime         string     `json:"read_time"`
	Status           string     `json:"status"`
	PublishedAt      *time.Time `json:"published_at"`
	MetaTitle        string     `json:"meta_title"`
	MetaDescription  string     `json:"meta_description"`
}

// InputFromPost returns the editor view of a stored post.
func InputFromPost(p Post) PostInput {
	return PostInput{
		Title:            p.Title,
		Slug:             p.Slug,
		Excerpt:          p.Excerpt,
		Content:          p.Content,
		Category:         deref(p.Category),
		Tags:             TagList(p.Tags),
		Featured:         p.Featured,
		FeaturedImage:    deref(p.FeaturedImage),
		FeaturedImageAlt: deref(p.FeaturedImageAlt),
		Author:           p.Author,
		ReadTime:         p.ReadTime,
		Status:           string(p.Status),
		PublishedAt:      p.PublishedAt,
		MetaTitle:        deref(p.MetaTitle),
		MetaDescription:  deref(p.MetaDescription),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TagList holds post tags. In JSON it accepts either an array of strings or a
// single comma-separated string; both decode to the same trimmed, non-empty list.
type TagList []string

// ParseTags splits a comma-separated string into a normalized TagList.
func ParseTags(s string) TagList {
	return TagList(strings.Split(s, ",")).Normalize()
}

// Normalize trims every tag and drops the empty ones. It never returns nil.
func (t TagList) Normalize() TagList {
	out := make(TagList, 0, len(t))
	for _, tag := range t {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = TagList{}
	case string:
		*t = ParseTags(v)
	case []any:
		tags := make(TagList, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("tags: element %v is not a string", item)
			}
			tags = append(tags, s)
		}
		*t = tags.Normalize()
	default:
		return fmt.Errorf("tags: expected array or comma-separated string, got %T", raw)
	}
	return nil
}
