// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package posts

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"consultblog/internal/markdown"
	"consultblog/internal/models"
	"consultblog/internal/readtime"
	"consultblog/internal/slug"
)

const (
	// DefaultTitle replaces a blank title.
	DefaultTitle = "Untitled Post"

	// DefaultAuthor is the byline used when none is given or configured.
	DefaultAuthor = "Editorial Team"

	// ExcerptLength is the maximum length, in characters, of a derived excerpt.
	ExcerptLength = 220
)

// NormalizeOptions supplies the environment-dependent defaults.
type NormalizeOptions struct {
	DefaultAuthor string
	Now           func() time.Time
}

func (o NormalizeOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Normalize turns editor input into the payload written to the store.
// existing is the stored row being edited, or nil for a new post.
func Normalize(in models.PostInput, existing *models.Post, opts NormalizeOptions) models.PostPayload {
	now := opts.now()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	s := slug.Generate(in.Slug)
	if s == "" {
		s = slug.Generate(title)
	}
	if s == "" {
		s = fmt.Sprintf("post-%d", now.UnixMilli())
	}

	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = Excerpt(in.Content)
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = strings.TrimSpace(opts.DefaultAuthor)
	}
	if author == "" {
		author = DefaultAuthor
	}

	readTime := strings.TrimSpace(in.ReadTime)
	if readTime == "" {
		readTime = readtime.Estimate(in.Content)
	}

	status := models.ParseStatus(in.Status)

	return models.PostPayload{
		Title:            title,
		Slug:             s,
		Excerpt:          excerpt,
		Content:          in.Content,
		Category:         nullable(in.Category),
		Tags:             []string(in.Tags.Normalize()),
		Featured:         in.Featured,
		FeaturedImage:    nullable(in.FeaturedImage),
		FeaturedImageAlt: nullable(in.FeaturedImageAlt),
		Author:           author,
		ReadTime:         readTime,
		Status:           status,
		PublishedAt:      publishedAt(status, in.PublishedAt, existing, now),
		MetaTitle:        nullable(in.MetaTitle),
		MetaDescription:  nullable(in.MetaDescription),
	}
}

// publishedAt is set on the transition into published, kept while the post
// stays published and cleared when it goes back to draft.
func publishedAt(status models.Status, supplied *time.Time, existing *models.Post, now time.Time) *time.Time {
	if status != models.StatusPublished {
		return nil
	}
	if existing != nil && existing.IsPublished() && existing.PublishedAt != nil {
		t := *existing.PublishedAt
		return &t
	}
	if supplied != nil && !supplied.IsZero() {
		t := *supplied
		return &t
	}
	return &now
}

// Excerpt derives a plain-text summary from markdown content, cut to
// ExcerptLength characters with a trailing ellipsis when longer.
func Excerpt(content string) string {
	text := markdown.PlainText(content)
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:ExcerptLength]), " \t\n") + "..."
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
