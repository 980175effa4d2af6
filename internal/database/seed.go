// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const welcomeContent = `## Welcome

This is the first post on the blog. Edit or delete it from the admin API.

- Write in **markdown**
- Publish when ready
`

// Seed inserts a welcome draft when the posts table is empty.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO posts (title, slug, excerpt, content, author, read_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7)
	`, "Welcome", "welcome", "This is the first post on the blog.",
		welcomeContent, "Editorial Team", "1 min read", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	slog.Info("database seeded with welcome post")
	return nil
}
