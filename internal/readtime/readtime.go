// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package readtime estimates how long a post takes to read.
package readtime

import (
	"fmt"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed the estimate assumes.
const WordsPerMinute = 200

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Words counts whitespace-separated tokens in content after HTML tags are removed.
func Words(content string) int {
	text := htmlTag.ReplaceAllString(content, " ")
	return len(strings.Fields(text))
}

// Minutes returns the rounded-up reading time in minutes, never less than one.
func Minutes(content string) int {
	words := Words(content)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Estimate formats the reading time of content, e.g. "3 min read".
func Estimate(content string) string {
	return fmt.Sprintf("%d min read", Minutes(content))
}
