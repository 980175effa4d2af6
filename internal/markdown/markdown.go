// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post bodies into HTML fragments. Render is a
// single-pass line scanner for the editor's markdown dialect; ToHTML is a
// goldmark-backed GitHub-Flavored renderer for sites that opt into it.
// Both escape or sanitize user text before any tag is emitted.
package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"consultblog/internal/slug"
)

// Engine selects which renderer converts a post body.
type Engine string

const (
	EngineBasic Engine = "basic"
	EngineGFM   Engine = "gfm"
)

// ParseEngine maps a configuration value to an Engine. Empty means basic.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineBasic:
		return EngineBasic, nil
	case EngineGFM:
		return EngineGFM, nil
	}
	return "", fmt.Errorf("unknown markdown engine %q", s)
}

// RenderWith converts source using the given engine.
func RenderWith(engine Engine, source string) (string, error) {
	if engine == EngineGFM {
		return ToHTML(source)
	}
	return Render(source), nil
}

// block is the construct the scanner currently has open. Only one can be
// open at a time.
type block int

const (
	blockNone block = iota
	blockCode
	blockQuote
	blockUnordered
	blockOrdered
)

type scanner struct {
	out  strings.Builder
	open block
	lang string
	buf  []string
}

// Render converts the markdown dialect into HTML. Line-level precedence is:
// fenced code, blank line, image, blockquote, heading, ordered item,
// unordered item, horizontal rule, paragraph.
func Render(source string) string {
	s := &scanner{}
	source = strings.ReplaceAll(source, "\r\n", "\n")
	for _, line := range strings.Split(source, "\n") {
		s.line(line)
	}
	s.close()
	return s.out.String()
}

func (s *scanner) line(raw string) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "```") {
		if s.open == blockCode {
			s.close()
			return
		}
		s.close()
		s.open = blockCode
		s.lang = strings.TrimSpace(trimmed[3:])
		return
	}
	if s.open == blockCode {
		s.buf = append(s.buf, raw)
		return
	}

	if trimmed == "" {
		s.close()
		return
	}

	if alt, src, title, ok := parseImage(trimmed); ok {
		s.close()
		s.writeImage(alt, src, title)
		return
	}

	if text, ok := parseQuote(trimmed); ok {
		s.enter(blockQuote)
		s.buf = append(s.buf, text)
		return
	}

	if level, text, ok := parseHeading(trimmed); ok {
		s.close()
		if id := slug.Generate(text); id != "" {
			fmt.Fprintf(&s.out, "<h%d id=\"%s\">%s</h%d>\n", level, id, inline(text), level)
		} else {
			fmt.Fprintf(&s.out, "<h%d>%s</h%d>\n", level, inline(text), level)
		}
		return
	}

	if text, ok := parseOrdered(trimmed); ok {
		s.enter(blockOrdered)
		s.out.WriteString("<li>" + inline(text) + "</li>\n")
		return
	}

	if text, ok := parseUnordered(trimmed); ok {
		s.enter(blockUnordered)
		s.out.WriteString("<li>" + inline(text) + "</li>\n")
		return
	}

	if isRule(trimmed) {
		s.close()
		s.out.WriteString("<hr />\n")
		return
	}

	s.close()
	s.out.WriteString("<p>" + inline(trimmed) + "</p>\n")
}

// enter switches to b, closing whatever else is open.
func (s *scanner) enter(b block) {
	if s.open == b {
		return
	}
	s.close()
	s.open = b
	switch b {
	case blockUnordered:
		s.out.WriteString("<ul>\n")
	case blockOrdered:
		s.out.WriteString("<ol>\n")
	}
}

// close flushes the open block, if any.
func (s *scanner) close() {
	switch s.open {
	case blockCode:
		if lang := slug.Generate(s.lang); lang != "" {
			s.out.WriteString(`<pre><code class="language-` + lang + `">`)
		} else {
			s.out.WriteString("<pre><code>")
		}
		s.out.WriteString(html.EscapeString(strings.Join(s.buf, "\n")))
		s.out.WriteString("</code></pre>\n")
	case blockQuote:
		s.out.WriteString("<blockquote>\n")
		for _, para := range quoteParagraphs(s.buf) {
			s.out.WriteString("<p>" + inline(para) + "</p>\n")
		}
		s.out.WriteString("</blockquote>\n")
	case blockUnordered:
		s.out.WriteString("</ul>\n")
	case blockOrdered:
		s.out.WriteString("</ol>\n")
	}
	s.open = blockNone
	s.lang = ""
	s.buf = nil
}

func (s *scanner) writeImage(alt, src, title string) {
	s.out.WriteString("<figure>")
	fmt.Fprintf(&s.out, `<img src="%s" alt="%s" loading="lazy" />`,
		safeURL(html.EscapeString(src)), html.EscapeString(alt))
	if title != "" {
		s.out.WriteString("<figcaption>" + html.EscapeString(title) + "</figcaption>")
	}
	s.out.WriteString("</figure>\n")
}

// quoteParagraphs joins buffered quote lines; an empty "> " line starts a new paragraph.
func quoteParagraphs(lines []string) []string {
	var paras []string
	var cur []string
	for _, l := range lines {
		if l == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, " "))
	}
	return paras
}

var imageLine = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)$`)

func parseImage(line string) (alt, src, title string, ok bool) {
	m := imageLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

func parseQuote(line string) (string, bool) {
	if !strings.HasPrefix(line, ">") {
		return "", false
	}
	return strings.TrimSpace(line[1:]), true
}

func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	text := strings.TrimSpace(line[level:])
	if text == "" {
		return 0, "", false
	}
	return level, text, true
}

func parseOrdered(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(line) || line[i] != '.' || line[i+1] != ' ' {
		return "", false
	}
	return strings.TrimSpace(line[i+2:]), true
}

func parseUnordered(line string) (string, bool) {
	if len(line) < 2 || !strings.ContainsRune("-*+", rune(line[0])) || line[1] != ' ' {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}

func isRule(line string) bool {
	if len(line) < 3 || !strings.ContainsRune("-*_", rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

var (
	boldItalic = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	bold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italic     = regexp.MustCompile(`\*([^*]+?)\*|\b_([^_]+?)_\b`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
	link       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// inline escapes text and then applies emphasis, code and link transforms,
// in that order, so "***x***" is never half-matched by the bold pattern.
func inline(text string) string {
	out := html.EscapeString(text)
	out = boldItalic.ReplaceAllString(out, "<strong><em>$1</em></strong>")
	out = bold.ReplaceAllString(out, "<strong>${1}${2}</strong>")
	out = italic.ReplaceAllString(out, "<em>${1}${2}</em>")
	out = inlineCode.ReplaceAllString(out, "<code>$1</code>")
	out = link.ReplaceAllStringFunc(out, func(m string) string {
		parts := link.FindStringSubmatch(m)
		href := safeURL(parts[2])
		if isExternal(href) {
			return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + parts[1] + `</a>`
		}
		return `<a href="` + href + `">` + parts[1] + `</a>`
	})
	return out
}

// safeURL returns u when it is relative or uses http, https or mailto, and "#" otherwise.
func safeURL(u string) string {
	colon := strings.IndexByte(u, ':')
	if colon < 0 {
		return u
	}
	if cut := strings.IndexAny(u, "/?#"); cut >= 0 && cut < colon {
		return u
	}
	switch strings.ToLower(u[:colon]) {
	case "http", "https", "mailto":
		return u
	}
	return "#"
}

func isExternal(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var tag = regexp.MustCompile(`<[^>]*>`)

// PlainText renders source and strips the markup, leaving single-spaced text.
// Used for excerpts and meta descriptions.
func PlainText(source string) string {
	text := tag.ReplaceAllString(Render(source), "")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}
