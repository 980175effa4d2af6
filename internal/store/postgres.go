// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"consultblog/internal/models"
)

// selectColumns is the column list every query scans, in scanPost order.
const selectColumns = `id, title, slug, excerpt, content, category, tags, featured,
	featured_image, featured_image_alt, author, read_time, status, published_at,
	meta_title, meta_description, created_at, updated_at`

// Postgres is a Backend over a direct connection to the posts table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres backend with the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category, &p.Tags,
		&p.Featured, &p.FeaturedImage, &p.FeaturedImageAlt, &p.Author, &p.ReadTime,
		&p.Status, &p.PublishedAt, &p.MetaTitle, &p.MetaDescription,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]models.Post, error) {
	defer rows.Close()
	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrSlugTaken, pgErr.Detail)
	}
	return err
}

func (s *Postgres) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	query := `SELECT ` + selectColumns + ` FROM posts`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY published_at DESC NULLS LAST, created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Postgres) FindPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM posts WHERE lower(slug) = lower($1)`, slug))
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

func (s *Postgres) FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// payloadArgs returns the payload in the column order of insertPayload/updatePayload.
func payloadArgs(p models.PostPayload) []any {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category, tags, p.Featured,
		p.FeaturedImage, p.FeaturedImageAlt, p.Author, p.ReadTime, string(p.Status),
		p.PublishedAt, p.MetaTitle, p.MetaDescription,
	}
}

func (s *Postgres) InsertPost(ctx context.Context, pl models.PostPayload) (*models.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, `
		INSERT INTO posts (title, slug, excerpt, content, category, tags, featured,
		                   featured_image, featured_image_alt, author, read_time, status,
		                   published_at, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+selectColumns, payloadArgs(pl)...))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", translate(err))
	}
	return p, nil
}

func (s *Postgres) UpdatePost(ctx context.Context, id uuid.UUID, pl models.PostPayload) (*models.Post, error) {
	args := append(payloadArgs(pl), id)
	p, err := scanPost(s.pool.QueryRow(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, content = $4, category = $5, tags = $6,
			featured = $7, featured_image = $8, featured_image_alt = $9, author = $10,
			read_time = $11, status = $12, published_at = $13, meta_title = $14,
			meta_description = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING `+selectColumns, args...))
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *Postgres) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *Postgres) InsertPostFields(ctx context.Context, f Fields) ([]models.Post, error) {
	cols, err := f.columns()
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	query := `INSERT INTO posts DEFAULT VALUES RETURNING ` + selectColumns
	args := make([]any, 0, len(cols))
	if len(cols) > 0 {
		names := make([]string, len(cols))
		params := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
			params[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, sqlValue(c.value))
		}
		query = `INSERT INTO posts (` + strings.Join(names, ", ") + `) VALUES (` +
			strings.Join(params, ", ") + `) RETURNING ` + selectColumns
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", translate(err))
	}
	return posts, nil
}

func (s *Postgres) UpdatePostFieldsBySlug(ctx context.Context, slug string, f Fields) ([]models.Post, error) {
	cols, err := f.columns()
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, i+1))
		args = append(args, sqlValue(c.value))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, slug)

	query := `UPDATE posts SET ` + strings.Join(sets, ", ") +
		fmt.Sprintf(` WHERE lower(slug) = lower($%d) RETURNING `, len(args)) + selectColumns

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", translate(err))
	}
	return posts, nil
}

// sqlValue unwraps the typed column values the driver cannot encode directly.
func sqlValue(v any) any {
	if s, ok := v.(models.Status); ok {
		return string(s)
	}
	return v
}
