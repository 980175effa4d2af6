// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"consultblog/internal/cache"
	"consultblog/internal/metrics"
	"consultblog/internal/models"
	"consultblog/internal/posts"
	"consultblog/internal/render"
)

// StaticPages are the marketing pages listed in the sitemap besides posts.
var StaticPages = []string{"/", "/about", "/services", "/blog", "/contact"}

// SEO serves sitemap.xml and robots.txt.
type SEO struct {
	repo      *posts.Repository
	site      render.Site
	pageCache *cache.PageCache
}

// NewSEO creates the SEO handler group. pageCache may be nil.
func NewSEO(repo *posts.Repository, site render.Site, pageCache *cache.PageCache) *SEO {
	return &SEO{repo: repo, site: site, pageCache: pageCache}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap encodes the sitemap for the given published posts.
func BuildSitemap(site render.Site, list []models.Post) ([]byte, error) {
	base := strings.TrimRight(site.BaseURL, "/")
	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, path := range StaticPages {
		priority := "0.8"
		if path == "/" {
			priority = "1.0"
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: base + path, ChangeFreq: "weekly", Priority: priority})
	}
	for _, p := range list {
		if !p.IsPublished() {
			continue
		}
		lastMod := p.UpdatedAt
		if lastMod.IsZero() && p.PublishedAt != nil {
			lastMod = *p.PublishedAt
		}
		u := sitemapURL{Loc: site.PostURL(p.Slug), ChangeFreq: "monthly", Priority: "0.7"}
		if !lastMod.IsZero() {
			u.LastMod = lastMod.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Sitemap serves /sitemap.xml.
func (s *SEO) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.pageCache != nil {
		cached, ok := s.pageCache.Get(ctx, cache.SitemapKey)
		metrics.ObserveCache("page", ok)
		if ok {
			writeXML(w, cached)
			return
		}
	}

	list, err := s.repo.List(ctx, models.StatusPublished)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	body, err := BuildSitemap(s.site, list)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if s.pageCache != nil {
		s.pageCache.Set(ctx, cache.SitemapKey, body)
	}
	writeXML(w, body)
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(body)
}

// Robots serves /robots.txt.
func (s *SEO) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/admin/\n\nSitemap: %s/sitemap.xml\n",
		strings.TrimRight(s.site.BaseURL, "/"))
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
