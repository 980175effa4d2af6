// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"consultblog/internal/models"
)

func TestDecodeFields(t *testing.T) {
	f, err := DecodeFields(strings.NewReader(`{"title":"T","featured":true}`))
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if f["title"] != "T" || f["featured"] != true {
		t.Errorf("DecodeFields = %v", f)
	}

	for _, body := range []string{"", "null", "[1]", "{bad"} {
		if _, err := DecodeFields(strings.NewReader(body)); err == nil {
			t.Errorf("DecodeFields(%q): expected error", body)
		}
	}
}

func TestFieldsWritable(t *testing.T) {
	f := Fields{
		"id":           "ignored",
		"created_at":   "ignored",
		"title":        "Hello",
		"category":     nil,
		"tags":         []any{" a ", "", "b"},
		"status":       "published",
		"published_at": "2026-03-01T10:00:00Z",
	}
	got, err := f.Writable()
	if err != nil {
		t.Fatalf("Writable: %v", err)
	}

	if _, ok := got["id"]; ok {
		t.Error("managed column id should be dropped")
	}
	if got["title"] != "Hello" {
		t.Errorf("title = %v", got["title"])
	}
	if c, ok := got["category"].(*string); !ok || c != nil {
		t.Errorf("category = %#v, want nil *string", got["category"])
	}
	tags := got["tags"].([]string)
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("tags = %v", tags)
	}
	if got["status"] != models.StatusPublished {
		t.Errorf("status = %v", got["status"])
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if ts := got["published_at"].(*time.Time); !ts.Equal(want) {
		t.Errorf("published_at = %v, want %v", ts, want)
	}
}

func TestFieldsSlugNormalized(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"My-Post", "my-post"},
		{"Café Déjà Vu!", "cafe-deja-vu"},
		{"already-fine", "already-fine"},
		{"   ", ""},
		{nil, ""},
	}

	for _, tt := range tests {
		got, err := Fields{"slug": tt.in}.Writable()
		if err != nil {
			t.Errorf("Writable(slug=%v): %v", tt.in, err)
			continue
		}
		if got["slug"] != tt.want {
			t.Errorf("slug %v -> %v, want %q", tt.in, got["slug"], tt.want)
		}
	}
}

func TestFieldsRejected(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		column string
	}{
		{"unknown column", Fields{"views": 3}, "views"},
		{"text not string", Fields{"title": 5.0}, "title"},
		{"bool not bool", Fields{"featured": "yes"}, "featured"},
		{"bad status", Fields{"status": "archived"}, "status"},
		{"bad timestamp", Fields{"published_at": "yesterday"}, "published_at"},
		{"non-string tag", Fields{"tags": []any{"a", 1.0}}, "tags"},
		{"slug without word characters", Fields{"slug": "!!!"}, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fields.Writable()
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %v", err)
			}
			if fe.Column != tt.column {
				t.Errorf("column = %q, want %q", fe.Column, tt.column)
			}
		})
	}
}

func TestFieldsColumnsSorted(t *testing.T) {
	cols, err := Fields{"title": "a", "content": "b", "author": "c"}.columns()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range cols {
		names = append(names, c.name)
	}
	if strings.Join(names, ",") != "author,content,title" {
		t.Errorf("columns order = %v", names)
	}
}
