// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"consultblog/internal/models"
)

// postsPath is the PostgREST resource for the posts table.
const postsPath = "/rest/v1/posts"

// postOrder matches the ordering every Backend promises for ListPosts.
const postOrder = "published_at.desc.nullslast,created_at.desc"

// APIError is a non-2xx response from the REST API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store: HTTP %d", e.Status)
}

// Is maps PostgREST's "no rows for single object" and Postgres unique
// violations onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == "PGRST116"
	case ErrSlugTaken:
		return e.Code == "23505"
	}
	return false
}

// RESTConfig configures the REST backend.
type RESTConfig struct {
	BaseURL    string // e.g. https://project.example.co
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
}

// REST opens PostgREST-compatible clients against one project.
type REST struct {
	cfg    RESTConfig
	client *http.Client
}

// NewREST creates a REST opener. One http.Client is shared by every backend
// it hands out.
func NewREST(cfg RESTConfig) *REST {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &REST{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (o *REST) Anonymous() Backend {
	return &restClient{http: o.client, base: o.cfg.BaseURL, apiKey: o.cfg.AnonKey, bearer: o.cfg.AnonKey}
}

func (o *REST) Service() Backend {
	return &restClient{http: o.client, base: o.cfg.BaseURL, apiKey: o.cfg.ServiceKey, bearer: o.cfg.ServiceKey}
}

func (o *REST) WithToken(token string) Backend {
	return &restClient{http: o.client, base: o.cfg.BaseURL, apiKey: o.cfg.AnonKey, bearer: token}
}

type restClient struct {
	http   *http.Client
	base   string
	apiKey string
	bearer string
}

func (c *restClient) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	q := url.Values{"select": {"*"}, "order": {postOrder}}
	if opts.Status != "" {
		q.Set("status", "eq."+string(opts.Status))
	}
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, q, nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (c *restClient) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	filter, ok := slugFilter(slug)
	if !ok {
		return nil, ErrNotFound
	}
	q := url.Values{"select": {"*"}, "slug": {filter}, "limit": {"1"}}
	return c.findOne(ctx, q, "find post by slug")
}

func (c *restClient) FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	q := url.Values{"select": {"*"}, "id": {"eq." + id.String()}, "limit": {"1"}}
	return c.findOne(ctx, q, "find post by id")
}

func (c *restClient) findOne(ctx context.Context, q url.Values, op string) (*models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, q, nil, &posts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

func (c *restClient) InsertPost(ctx context.Context, p models.PostPayload) (*models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, http.MethodPost, nil, p, &posts); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("insert post: no row returned")
	}
	return &posts[0], nil
}

func (c *restClient) UpdatePost(ctx context.Context, id uuid.UUID, p models.PostPayload) (*models.Post, error) {
	var posts []models.Post
	q := url.Values{"id": {"eq." + id.String()}}
	if err := c.do(ctx, http.MethodPatch, q, p, &posts); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

func (c *restClient) DeletePost(ctx context.Context, id uuid.UUID) error {
	q := url.Values{"id": {"eq." + id.String()}}
	if err := c.do(ctx, http.MethodDelete, q, nil, nil); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (c *restClient) InsertPostFields(ctx context.Context, f Fields) ([]models.Post, error) {
	cols, err := f.Writable()
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	var posts []models.Post
	if err := c.do(ctx, http.MethodPost, nil, cols, &posts); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return posts, nil
}

func (c *restClient) UpdatePostFieldsBySlug(ctx context.Context, slug string, f Fields) ([]models.Post, error) {
	cols, err := f.Writable()
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	filter, ok := slugFilter(slug)
	if !ok {
		return nil, nil
	}
	var posts []models.Post
	q := url.Values{"slug": {filter}}
	if err := c.do(ctx, http.MethodPatch, q, cols, &posts); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return posts, nil
}

// slugFilter builds a case-insensitive exact match on the slug column.
// PostgREST turns '*' into a wildcard with no escape, and no stored slug can
// contain one, so such lookups report false and match nothing.
func slugFilter(slug string) (string, bool) {
	if strings.Contains(slug, "*") {
		return "", false
	}
	escaped := likeEscaper.Replace(slug)
	return "ilike." + escaped, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// do performs one request against the posts resource and decodes the JSON
// response into out when out is non-nil.
func (c *restClient) do(ctx context.Context, method string, q url.Values, body, out any) error {
	target := c.base + postsPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
