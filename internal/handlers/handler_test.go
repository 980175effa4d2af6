// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler tests.
// Everything runs against the in-memory store so no services are required.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"consultblog/internal/auth"
	"consultblog/internal/markdown"
	"consultblog/internal/models"
	"consultblog/internal/posts"
	"consultblog/internal/render"
	"consultblog/internal/store"
)

const editorToken = "editor-token"

var testSite = render.Site{Name: "Consult Blog", BaseURL: "https://consult.example"}

// spyOpener hands out the shared memory backend and records which
// credentials were requested.
type spyOpener struct {
	mu     sync.Mutex
	b      store.Backend
	anon   int
	tokens []string
}

func (o *spyOpener) Anonymous() store.Backend {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.anon++
	return o.b
}

func (o *spyOpener) Service() store.Backend { return o.b }

func (o *spyOpener) WithToken(token string) store.Backend {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, token)
	return o.b
}

func (o *spyOpener) contacted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.anon > 0 || len(o.tokens) > 0
}

// memoryImages is an ImageStore keeping uploads in a map.
type memoryImages struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryImages) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return nil
}

func (m *memoryImages) FileURL(key string) string {
	return "https://cdn.example/" + key
}

func (m *memoryImages) ExtractKey(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, "https://cdn.example/")
	return key, ok && key != ""
}

func (m *memoryImages) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// testEnv wires handlers over one memory store.
type testEnv struct {
	Mem    *store.Memory
	Opener *spyOpener
	Repo   *posts.Repository
	Images *memoryImages
	Blog   *Blog
	Admin  *Admin
	Public *Public
	SEO    *SEO
	Router chi.Router
}

type envOption func(*posts.Config)

func withoutImages(cfg *posts.Config) { cfg.Images = nil }

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	mem := store.NewMemory()
	images := &memoryImages{objects: map[string][]byte{}}
	cfg := posts.Config{
		Images:        images,
		DefaultAuthor: "Editorial Team",
		Now:           func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	repo := posts.New(mem, nil, cfg)

	renderer, err := render.New(testSite)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	resolver := auth.ResolverFunc(func(_ context.Context, token string) (*auth.User, error) {
		if token != editorToken {
			return nil, auth.ErrInvalidToken
		}
		return &auth.User{ID: "editor-1", Email: "editor@consult.example", Role: "authenticated"}, nil
	})

	env := &testEnv{
		Mem:    mem,
		Opener: &spyOpener{b: mem},
		Repo:   repo,
		Images: images,
		Admin:  NewAdmin(repo, markdown.EngineBasic),
		Public: NewPublic(repo, renderer, nil, markdown.EngineBasic),
		SEO:    NewSEO(repo, testSite, nil),
	}
	env.Blog = NewBlog(env.Opener, resolver, repo)

	r := chi.NewRouter()
	r.Handle("/blog/{slug}", env.Blog)
	r.Get("/api/posts", env.Public.List)
	r.Get("/api/posts/{slug}", env.Public.Show)
	r.Get("/posts/{slug}", env.Public.Page)
	r.Get("/api/admin/posts", env.Admin.List)
	r.Post("/api/admin/posts", env.Admin.Create)
	r.Put("/api/admin/posts/{id}", env.Admin.Update)
	r.Delete("/api/admin/posts/{id}", env.Admin.Delete)
	r.Post("/api/admin/images", env.Admin.UploadImage)
	r.Post("/api/admin/preview", env.Admin.Preview)
	r.Post("/api/admin/cache/invalidate", env.Admin.InvalidateCache)
	r.Get("/sitemap.xml", env.SEO.Sitemap)
	r.Get("/robots.txt", env.SEO.Robots)
	r.Get("/health", Health)
	env.Router = r

	return env
}

// seed creates a post through the repository.
func (e *testEnv) seed(t *testing.T, in models.PostInput) *models.Post {
	t.Helper()
	p, err := e.Repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("seed %q: %v", in.Title, err)
	}
	return p
}

// do sends a request through the router.
func (e *testEnv) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}
