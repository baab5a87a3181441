package pipeline

// Notes:
// - SanitizeMailHTML is checked for what it removes and what it keeps
// - HTMLToText output is compared after whitespace normalization, which
//   is part of its contract

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestSanitizeMailHTML
// ---------------------------------------------------------------------------

func TestSanitizeMailHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "script removed",
			html:         `<html><body><p>hi</p><script>alert(1)</script></body></html>`,
			wantContains: []string{"<p>hi</p>"},
			wantExcludes: []string{"<script", "alert"},
		},
		{
			name:         "event handler removed",
			html:         `<body><img src="a.png" onerror="x()"></body>`,
			wantContains: []string{`src="a.png"`},
			wantExcludes: []string{"onerror"},
		},
		{
			name:         "javascript href removed",
			html:         `<body><a href="javascript:evil()">x</a></body>`,
			wantExcludes: []string{"javascript:"},
		},
		{
			name:         "iframe and object removed",
			html:         `<body><iframe src="x"></iframe><object data="y"></object><p>ok</p></body>`,
			wantContains: []string{"<p>ok</p>"},
			wantExcludes: []string{"<iframe", "<object"},
		},
		{
			name:         "style kept, head dropped",
			html:         `<html><head><title>t</title><style>p{color:red}</style></head><body><p>x</p></body></html>`,
			wantContains: []string{"<style>p{color:red}</style>", "<p>x</p>"},
			wantExcludes: []string{"<title>", "<body"},
		},
		{
			name:         "comments removed",
			html:         `<body><!-- tracking --><p>x</p></body>`,
			wantExcludes: []string{"tracking"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SanitizeMailHTML(tt.html)
			if err != nil {
				t.Fatalf("SanitizeMailHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("result missing %q\ngot: %s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("result should not contain %q\ngot: %s", exclude, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHTMLToText
// ---------------------------------------------------------------------------

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "paragraphs separated",
			html: "<p>one</p><p>two</p>",
			want: "one\n\ntwo",
		},
		{
			name: "br breaks line",
			html: "a<br>b",
			want: "a\nb",
		},
		{
			name: "list items dashed",
			html: "<ul><li>x</li><li>y</li></ul>",
			want: "- x\n- y",
		},
		{
			name: "head and script skipped",
			html: "<html><head><title>T</title><style>p{}</style></head><body>body<script>s()</script></body></html>",
			want: "body",
		},
		{
			name: "whitespace collapsed",
			html: "<p>  lots   of\n   space </p>",
			want: "lots of space",
		},
		{
			name: "entities decoded",
			html: "<p>a &amp; b</p>",
			want: "a & b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTMLToText(tt.html); got != tt.want {
				t.Errorf("HTMLToText() = %q, want %q", got, tt.want)
			}
		})
	}
}
