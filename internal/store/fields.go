// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"consultblog/internal/models"
	"consultblog/internal/slug"
)

// Fields is a raw set of post columns, as decoded from a request body.
type Fields map[string]any

// DecodeFields reads a single JSON object.
func DecodeFields(r io.Reader) (Fields, error) {
	var f Fields
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("decode fields: body must be a JSON object")
	}
	return f, nil
}

type columnKind int

const (
	colText columnKind = iota
	colSlug
	colNullableText
	colBool
	colTags
	colTimestamp
	colStatus
)

// postColumns are the writable columns of the posts table.
var postColumns = map[string]columnKind{
	"title":              colText,
	"slug":               colSlug,
	"excerpt":            colText,
	"content":            colText,
	"category":           colNullableText,
	"tags":               colTags,
	"featured":           colBool,
	"featured_image":     colNullableText,
	"featured_image_alt": colNullableText,
	"author":             colText,
	"read_time":          colText,
	"status":             colStatus,
	"published_at":       colTimestamp,
	"meta_title":         colNullableText,
	"meta_description":   colNullableText,
}

// managedColumns are assigned by the store; values sent for them are ignored.
var managedColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// FieldError reports a column the store cannot write.
type FieldError struct {
	Column string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}

// column is one typed, validated column value.
type column struct {
	name  string
	value any
}

// columns validates f and converts every value to the Go type of its column.
// The result is sorted by column name so generated SQL is stable.
func (f Fields) columns() ([]column, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		if managedColumns[name] {
			continue
		}
		if _, ok := postColumns[name]; !ok {
			return nil, &FieldError{Column: name, Reason: "unknown column"}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]column, 0, len(names))
	for _, name := range names {
		v, err := convert(postColumns[name], f[name])
		if err != nil {
			return nil, &FieldError{Column: name, Reason: err.Error()}
		}
		cols = append(cols, column{name: name, value: v})
	}
	return cols, nil
}

// Writable returns the validated columns as a map with typed values,
// suitable for JSON encoding.
func (f Fields) Writable() (map[string]any, error) {
	cols, err := f.columns()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c.name] = c.value
	}
	return out, nil
}

func convert(kind columnKind, v any) (any, error) {
	switch kind {
	case colText:
		if v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil

	case colSlug:
		if v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		if strings.TrimSpace(s) == "" {
			return "", nil
		}
		out := slug.Generate(s)
		if out == "" {
			return nil, fmt.Errorf("no URL-safe characters in %q", s)
		}
		return out, nil

	case colNullableText:
		if v == nil {
			return (*string)(nil), nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string or null, got %T", v)
		}
		return &s, nil

	case colBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}
		return b, nil

	case colTags:
		switch t := v.(type) {
		case nil:
			return []string{}, nil
		case string:
			return []string(models.ParseTags(t)), nil
		case []string:
			return []string(models.TagList(t).Normalize()), nil
		case []any:
			tags := make(models.TagList, 0, len(t))
			for _, item := range t {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected string tags, got %T", item)
				}
				tags = append(tags, s)
			}
			return []string(tags.Normalize()), nil
		}
		return nil, fmt.Errorf("expected array or string, got %T", v)

	case colTimestamp:
		switch t := v.(type) {
		case nil:
			return (*time.Time)(nil), nil
		case time.Time:
			return &t, nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("expected RFC 3339 timestamp: %w", err)
			}
			return &ts, nil
		}
		return nil, fmt.Errorf("expected timestamp string or null, got %T", v)

	case colStatus:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		switch models.Status(strings.TrimSpace(s)) {
		case models.StatusDraft:
			return models.StatusDraft, nil
		case models.StatusPublished:
			return models.StatusPublished, nil
		}
		return nil, fmt.Errorf("must be %q or %q", models.StatusDraft, models.StatusPublished)
	}
	return nil, fmt.Errorf("unsupported column kind %d", kind)
}
