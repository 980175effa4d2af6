// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render builds the public HTML page of a blog post, including its
// SEO meta tags and schema.org structured data.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"consultblog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site describes the site a post belongs to.
type Site struct {
	Name    string
	BaseURL string // absolute, without trailing slash
}

// PostURL returns the canonical URL of the post with the given slug.
func (s Site) PostURL(slug string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/posts/" + slug
}

// PostPage is the data the post template renders.
type PostPage struct {
	Post         models.Post
	HTML         template.HTML // rendered body, already sanitized
	Title        string
	Description  string
	CanonicalURL string
	Image        string
	ImageAlt     string
	SiteName     string
	JSONLD       template.JS
}

// Renderer executes the embedded post template.
type Renderer struct {
	site Site
	tmpl *template.Template
}

// New parses the embedded templates.
func New(site Site) (*Renderer, error) {
	funcs := template.FuncMap{
		"iso":  func(t *time.Time) string { return t.UTC().Format(time.RFC3339) },
		"date": func(t *time.Time) string { return t.Format("January 2, 2006") },
	}
	tmpl, err := template.New("post.html").Funcs(funcs).ParseFS(templateFS, "templates/post.html")
	if err != nil {
		return nil, fmt.Errorf("parse post template: %w", err)
	}
	return &Renderer{site: site, tmpl: tmpl}, nil
}

// Page builds the template data for p. body is the rendered post content.
func (rn *Renderer) Page(p models.Post, body string) (PostPage, error) {
	page := PostPage{
		Post:         p,
		HTML:         template.HTML(body),
		Title:        p.Title,
		Description:  p.Excerpt,
		CanonicalURL: rn.site.PostURL(p.Slug),
		SiteName:     rn.site.Name,
	}
	if p.MetaTitle != nil {
		page.Title = *p.MetaTitle
	}
	if p.MetaDescription != nil {
		page.Description = *p.MetaDescription
	}
	if p.FeaturedImage != nil {
		page.Image = *p.FeaturedImage
		page.ImageAlt = p.Title
		if p.FeaturedImageAlt != nil {
			page.ImageAlt = *p.FeaturedImageAlt
		}
	}

	ld, err := rn.articleLD(page)
	if err != nil {
		return PostPage{}, err
	}
	page.JSONLD = ld
	return page, nil
}

// Post renders the full HTML page for p.
func (rn *Renderer) Post(p models.Post, body string) ([]byte, error) {
	page, err := rn.Page(p, body)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := rn.tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.Slug, err)
	}
	return buf.Bytes(), nil
}

type ldPerson struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ldOrganization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type ldArticle struct {
	Context          string         `json:"@context"`
	Type             string         `json:"@type"`
	Headline         string         `json:"headline"`
	Description      string         `json:"description,omitempty"`
	Image            string         `json:"image,omitempty"`
	Author           ldPerson       `json:"author"`
	Publisher        ldOrganization `json:"publisher"`
	DatePublished    string         `json:"datePublished,omitempty"`
	DateModified     string         `json:"dateModified,omitempty"`
	MainEntityOfPage string         `json:"mainEntityOfPage"`
	Keywords         string         `json:"keywords,omitempty"`
	ArticleSection   string         `json:"articleSection,omitempty"`
}

// articleLD encodes a schema.org BlogPosting for the page.
func (rn *Renderer) articleLD(page PostPage) (template.JS, error) {
	p := page.Post
	doc := ldArticle{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         page.Title,
		Description:      page.Description,
		Image:            page.Image,
		Author:           ldPerson{Type: "Person", Name: p.Author},
		Publisher:        ldOrganization{Type: "Organization", Name: rn.site.Name, URL: rn.site.BaseURL},
		MainEntityOfPage: page.CanonicalURL,
		Keywords:         strings.Join(p.Tags, ", "),
	}
	if p.PublishedAt != nil {
		doc.DatePublished = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		doc.DateModified = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if p.Category != nil {
		doc.ArticleSection = *p.Category
	}

	// encoding/json escapes <, > and & so the payload cannot close the script tag.
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode json-ld: %w", err)
	}
	return template.JS(data), nil
}
