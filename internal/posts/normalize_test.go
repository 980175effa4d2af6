// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package posts

import (
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"consultblog/internal/models"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func testOpts() NormalizeOptions {
	return NormalizeOptions{Now: func() time.Time { return fixedNow }}
}

func TestNormalizeDefaults(t *testing.T) {
	pl := Normalize(models.PostInput{}, nil, testOpts())

	if pl.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", pl.Title, DefaultTitle)
	}
	if pl.Slug != "untitled-post" {
		t.Errorf("slug = %q, want %q", pl.Slug, "untitled-post")
	}
	if pl.Author != DefaultAuthor {
		t.Errorf("author = %q, want %q", pl.Author, DefaultAuthor)
	}
	if pl.ReadTime != "1 min read" {
		t.Errorf("read_time = %q", pl.ReadTime)
	}
	if pl.Status != models.StatusDraft || pl.PublishedAt != nil {
		t.Errorf("status = %q, published_at = %v; want draft and nil", pl.Status, pl.PublishedAt)
	}
	if pl.Tags == nil || len(pl.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil", pl.Tags)
	}
	if pl.Category != nil || pl.FeaturedImage != nil || pl.FeaturedImageAlt != nil ||
		pl.MetaTitle != nil || pl.MetaDescription != nil {
		t.Error("blank optional fields should be null")
	}
	if pl.Featured {
		t.Error("featured should default to false")
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		slug  string
		want  string
	}{
		{"from title", "Café Déjà Vu!", "", "cafe-deja-vu"},
		{"explicit slug is slugified", "Ignored", "My Custom_Slug", "my-custom-slug"},
		{"blank slug falls back to title", "Growth Plan", "   ", "growth-plan"},
		{"unsluggable title", "!!!", "", "post-" + strconv.FormatInt(fixedNow.UnixMilli(), 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := Normalize(models.PostInput{Title: tt.title, Slug: tt.slug}, nil, testOpts())
			if pl.Slug != tt.want {
				t.Errorf("slug = %q, want %q", pl.Slug, tt.want)
			}
		})
	}
}

func TestNormalizeExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 100)

	tests := []struct {
		name    string
		excerpt string
		content string
		want    string
	}{
		{"supplied kept", "  Hand written  ", long, "Hand written"},
		{"derived from markdown", "", "# Title\n\nSome **bold** text.", "Title Some bold text."},
		{"derived and truncated", "", long, strings.TrimSpace(long[:ExcerptLength]) + "..."},
		{"empty content", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := Normalize(models.PostInput{Excerpt: tt.excerpt, Content: tt.content}, nil, testOpts())
			if pl.Excerpt != tt.want {
				t.Errorf("excerpt = %q, want %q", pl.Excerpt, tt.want)
			}
		})
	}
}

func TestExcerptCountsCharacters(t *testing.T) {
	content := strings.Repeat("é", ExcerptLength+10)
	got := Excerpt(content)
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != ExcerptLength {
		t.Errorf("excerpt kept %d characters, want %d", n, ExcerptLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt %q should end with an ellipsis", got)
	}
}

func TestNormalizeAuthor(t *testing.T) {
	opts := testOpts()
	opts.DefaultAuthor = "Consulting Team"

	if pl := Normalize(models.PostInput{}, nil, opts); pl.Author != "Consulting Team" {
		t.Errorf("configured fallback: author = %q", pl.Author)
	}
	if pl := Normalize(models.PostInput{Author: " Jane "}, nil, opts); pl.Author != "Jane" {
		t.Errorf("supplied: author = %q", pl.Author)
	}
}

func TestNormalizeReadTime(t *testing.T) {
	content := strings.Repeat("word ", 400)
	if pl := Normalize(models.PostInput{Content: content}, nil, testOpts()); pl.ReadTime != "2 min read" {
		t.Errorf("derived read_time = %q", pl.ReadTime)
	}
	if pl := Normalize(models.PostInput{Content: content, ReadTime: "7 min read"}, nil, testOpts()); pl.ReadTime != "7 min read" {
		t.Errorf("supplied read_time = %q", pl.ReadTime)
	}
}

func TestNormalizeTagsAndOptionals(t *testing.T) {
	in := models.PostInput{
		Tags:          models.TagList{" growth ", "", "strategy"},
		Category:      " Finance ",
		FeaturedImage: "https://cdn.example.com/a.png",
		MetaTitle:     "   ",
		Featured:      true,
	}
	pl := Normalize(in, nil, testOpts())

	if strings.Join(pl.Tags, ",") != "growth,strategy" {
		t.Errorf("tags = %v", pl.Tags)
	}
	if pl.Category == nil || *pl.Category != "Finance" {
		t.Errorf("category = %v", pl.Category)
	}
	if pl.FeaturedImage == nil || *pl.FeaturedImage != "https://cdn.example.com/a.png" {
		t.Errorf("featured_image = %v", pl.FeaturedImage)
	}
	if pl.MetaTitle != nil {
		t.Errorf("blank meta_title should be null, got %q", *pl.MetaTitle)
	}
	if !pl.Featured {
		t.Error("featured should be kept")
	}
}

func TestNormalizeStatus(t *testing.T) {
	for in, want := range map[string]models.Status{
		"published": models.StatusPublished,
		"draft":     models.StatusDraft,
		"archived":  models.StatusDraft,
		"":          models.StatusDraft,
	} {
		if got := Normalize(models.PostInput{Status: in}, nil, testOpts()).Status; got != want {
			t.Errorf("status %q -> %q, want %q", in, got, want)
		}
	}
}

func TestNormalizePublishedAt(t *testing.T) {
	earlier := fixedNow.Add(-72 * time.Hour)
	supplied := fixedNow.Add(-time.Hour)

	publishedRow := &models.Post{Status: models.StatusPublished, PublishedAt: &earlier}
	draftRow := &models.Post{Status: models.StatusDraft}

	tests := []struct {
		name     string
		status   string
		supplied *time.Time
		existing *models.Post
		want     *time.Time
	}{
		{"new published post gets now", "published", nil, nil, &fixedNow},
		{"new published post keeps supplied", "published", &supplied, nil, &supplied},
		{"stays published keeps original", "published", &supplied, publishedRow, &earlier},
		{"draft to published gets now", "published", nil, draftRow, &fixedNow},
		{"published to draft clears", "draft", &supplied, publishedRow, nil},
		{"new draft is null", "draft", &supplied, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := Normalize(models.PostInput{Status: tt.status, PublishedAt: tt.supplied}, tt.existing, testOpts())
			switch {
			case tt.want == nil && pl.PublishedAt != nil:
				t.Errorf("published_at = %v, want nil", *pl.PublishedAt)
			case tt.want != nil && pl.PublishedAt == nil:
				t.Errorf("published_at = nil, want %v", *tt.want)
			case tt.want != nil && !pl.PublishedAt.Equal(*tt.want):
				t.Errorf("published_at = %v, want %v", *pl.PublishedAt, *tt.want)
			}
		})
	}
}

func TestNormalizePublishedAtIsCopied(t *testing.T) {
	earlier := fixedNow.Add(-time.Hour)
	row := &models.Post{Status: models.StatusPublished, PublishedAt: &earlier}

	pl := Normalize(models.PostInput{Status: "published"}, row, testOpts())
	*pl.PublishedAt = fixedNow
	if !earlier.Equal(fixedNow.Add(-time.Hour)) {
		t.Error("payload shares published_at with the existing row")
	}
}
