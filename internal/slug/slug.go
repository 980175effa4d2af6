// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonWord matches anything that isn't an ASCII word character, whitespace, or hyphen.
	nonWord = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of whitespace, underscores and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given string. Diacritics are
// folded to their base letter before anything else is stripped.
// Example: "Café Déjà Vu!" → "cafe-deja-vu"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(foldDiacritics(s)))
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// foldDiacritics decomposes s and drops combining marks, so "é" becomes "e".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
