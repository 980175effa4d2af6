// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold",
			input: "**bold**",
			want:  "<p><strong>bold</strong></p>\n",
		},
		{
			name:  "bold with underscores",
			input: "__bold__",
			want:  "<p><strong>bold</strong></p>\n",
		},
		{
			name:  "bold italic takes precedence",
			input: "***both***",
			want:  "<p><strong><em>both</em></strong></p>\n",
		},
		{
			name:  "italic",
			input: "*soft* and _gentle_",
			want:  "<p><em>soft</em> and <em>gentle</em></p>\n",
		},
		{
			name:  "snake case is not italic",
			input: "call snake_case_name now",
			want:  "<p>call snake_case_name now</p>\n",
		},
		{
			name:  "inline code",
			input: "run `go test` first",
			want:  "<p>run <code>go test</code> first</p>\n",
		},
		{
			name:  "heading with id",
			input: "# Growth Strategy",
			want:  "<h1 id=\"growth-strategy\">Growth Strategy</h1>\n",
		},
		{
			name:  "level six heading",
			input: "###### Small print",
			want:  "<h6 id=\"small-print\">Small print</h6>\n",
		},
		{
			name:  "seven hashes is a paragraph",
			input: "####### too deep",
			want:  "<p>####### too deep</p>\n",
		},
		{
			name:  "hashtag is a paragraph",
			input: "#consulting",
			want:  "<p>#consulting</p>\n",
		},
		{
			name:  "horizontal rule",
			input: "---",
			want:  "<hr />\n",
		},
		{
			name:  "starred rule",
			input: "*****",
			want:  "<hr />\n",
		},
		{
			name:  "underscore rule",
			input: "___",
			want:  "<hr />\n",
		},
		{
			name:  "relative link",
			input: "[About us](/about)",
			want:  "<p><a href=\"/about\">About us</a></p>\n",
		},
		{
			name:  "external link opens in new tab",
			input: "[Contact](https://example.com)",
			want:  "<p><a href=\"https://example.com\" target=\"_blank\" rel=\"noopener noreferrer\">Contact</a></p>\n",
		},
		{
			name:  "image",
			input: "![Team photo](/img/team.jpg)",
			want:  "<figure><img src=\"/img/team.jpg\" alt=\"Team photo\" loading=\"lazy\" /></figure>\n",
		},
		{
			name:  "image with caption",
			input: "![Chart](/img/chart.png \"Revenue by quarter\")",
			want:  "<figure><img src=\"/img/chart.png\" alt=\"Chart\" loading=\"lazy\" /><figcaption>Revenue by quarter</figcaption></figure>\n",
		},
		{
			name:  "code block escapes content",
			input: "```go\nfmt.Println(\"<hi>\")\n```",
			want:  "<pre><code class=\"language-go\">fmt.Println(&#34;&lt;hi&gt;&#34;)</code></pre>\n",
		},
		{
			name:  "code block keeps markdown literal",
			input: "```\n# not a heading\n**not bold**\n```",
			want:  "<pre><code># not a heading\n**not bold**</code></pre>\n",
		},
		{
			name:  "unterminated code block flushed at end",
			input: "```\nline one",
			want:  "<pre><code>line one</code></pre>\n",
		},
		{
			name:  "blockquote lines accumulate",
			input: "> one\n> two",
			want:  "<blockquote>\n<p>one two</p>\n</blockquote>\n",
		},
		{
			name:  "blockquote paragraphs",
			input: "> one\n>\n> two",
			want:  "<blockquote>\n<p>one</p>\n<p>two</p>\n</blockquote>\n",
		},
		{
			name:  "blockquote flushed by paragraph",
			input: "> quoted\nplain",
			want:  "<blockquote>\n<p>quoted</p>\n</blockquote>\n<p>plain</p>\n",
		},
		{
			name:  "blank lines separate paragraphs",
			input: "first\n\nsecond",
			want:  "<p>first</p>\n<p>second</p>\n",
		},
		{
			name:  "windows line endings",
			input: "first\r\nsecond",
			want:  "<p>first</p>\n<p>second</p>\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.input); got != tt.want {
				t.Errorf("Render(%q)\n got: %q\nwant: %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRender_Lists(t *testing.T) {
	t.Run("consecutive items share one list", func(t *testing.T) {
		got := Render("- a\n- b")
		want := "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if n := strings.Count(got, "<ul>"); n != 1 {
			t.Errorf("expected exactly one <ul>, got %d", n)
		}
	})

	t.Run("all bullet markers group together", func(t *testing.T) {
		got := Render("- a\n* b\n+ c")
		if strings.Count(got, "<ul>") != 1 || strings.Count(got, "<li>") != 3 {
			t.Errorf("expected one list with three items, got %q", got)
		}
	})

	t.Run("ordered list", func(t *testing.T) {
		got := Render("1. first\n2. second\n10. tenth")
		want := "<ol>\n<li>first</li>\n<li>second</li>\n<li>tenth</li>\n</ol>\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("switching kind closes the open list", func(t *testing.T) {
		got := Render("- a\n1. b")
		want := "<ul>\n<li>a</li>\n</ul>\n<ol>\n<li>b</li>\n</ol>\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("blank line closes the open list", func(t *testing.T) {
		got := Render("- a\n\n- b")
		if n := strings.Count(got, "<ul>"); n != 2 {
			t.Errorf("expected two lists, got %d in %q", n, got)
		}
	})

	t.Run("paragraph closes the open list", func(t *testing.T) {
		got := Render("- a\ntext")
		want := "<ul>\n<li>a</li>\n</ul>\n<p>text</p>\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("items get inline formatting", func(t *testing.T) {
		got := Render("- **key** point")
		if !strings.Contains(got, "<li><strong>key</strong> point</li>") {
			t.Errorf("got %q", got)
		}
	})
}

func TestRender_Escaping(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"**<script>alert(1)</script>**",
		"# <script>alert(1)</script>",
		"- <script>alert(1)</script>",
		"> <script>alert(1)</script>",
		"![<script>](x.png)",
		"```\n<script>alert(1)</script>\n```",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := Render(input)
			if strings.Contains(got, "<script>") {
				t.Errorf("Render(%q) leaked a script tag: %q", input, got)
			}
		})
	}

	t.Run("quotes and ampersands", func(t *testing.T) {
		got := Render(`Tom & "Jerry's"`)
		want := "<p>Tom &amp; &#34;Jerry&#39;s&#34;</p>\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("bold keeps literal text", func(t *testing.T) {
		got := Render("**bold**")
		if !strings.Contains(got, "<strong") || !strings.Contains(got, "bold") {
			t.Errorf("got %q", got)
		}
	})
}

func TestRender_UnsafeURLs(t *testing.T) {
	inputs := []string{
		"[click](javascript:alert(1))",
		"[click](JavaScript:alert)",
		"[data](data:text/html;base64,PHNjcmlwdD4=)",
		"![x](javascript:alert)",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := strings.ToLower(Render(input))
			if strings.Contains(got, "javascript:") || strings.Contains(got, "data:") {
				t.Errorf("Render(%q) kept an unsafe URL: %q", input, got)
			}
		})
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"mailto:hello@example.com", "mailto:hello@example.com"},
		{"/relative/path", "/relative/path"},
		{"#section", "#section"},
		{"page?time=10:30", "page?time=10:30"},
		{"javascript:alert(1)", "#"},
		{"vbscript:x", "#"},
	}
	for _, tt := range tests {
		if got := safeURL(tt.in); got != tt.want {
			t.Errorf("safeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	src := "# Title\n\nSome **bold** text with a [link](/x).\n\n- one\n- two"
	got := PlainText(src)
	want := "Title Some bold text with a link. one two"
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}

	if got := PlainText("Tom & Jerry"); got != "Tom & Jerry" {
		t.Errorf("PlainText should unescape entities, got %q", got)
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"", EngineBasic, false},
		{"basic", EngineBasic, false},
		{" GFM ", EngineGFM, false},
		{"commonmark", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEngine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseEngine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToHTML(t *testing.T) {
	got, err := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, "<table>") {
		t.Errorf("expected GFM table, got %q", got)
	}

	got, err = ToHTML("hello <script>alert(1)</script> [x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") {
		t.Errorf("ToHTML output not sanitized: %q", got)
	}
}

func TestToHTML_Highlighting(t *testing.T) {
	got, err := ToHTML("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, `class="chroma"`) {
		t.Errorf("highlight classes stripped: %q", got)
	}
	if !strings.Contains(got, "<span class=") {
		t.Errorf("expected token spans, got %q", got)
	}
	if strings.Contains(got, "style=") {
		t.Errorf("inline styles should not be emitted: %q", got)
	}
}

func TestRenderWith(t *testing.T) {
	basic, err := RenderWith(EngineBasic, "~~gone~~")
	if err != nil {
		t.Fatalf("RenderWith basic: %v", err)
	}
	if strings.Contains(basic, "<del>") {
		t.Errorf("basic engine should not render strikethrough, got %q", basic)
	}

	gfm, err := RenderWith(EngineGFM, "~~gone~~")
	if err != nil {
		t.Fatalf("RenderWith gfm: %v", err)
	}
	if !strings.Contains(gfm, "<del>") {
		t.Errorf("gfm engine should render strikethrough, got %q", gfm)
	}
}
