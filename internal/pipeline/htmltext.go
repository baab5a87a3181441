package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements dropped from mail HTML together with their content.
var unsafeElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Iframe: true,
	atom.Object: true,
	atom.Embed:  true,
	atom.Form:   true,
	atom.Base:   true,
	atom.Meta:   true,
	atom.Link:   true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Tr: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Blockquote: true, atom.Pre: true, atom.Hr: true,
}

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRun = regexp.MustCompile(`\n[ \t]*\n(\s*\n)+`)
)

// SanitizeMailHTML strips active content from a mail body and returns
// the inner HTML of its <body> with <style> blocks kept. Event handler
// attributes and javascript: URLs are removed.
func SanitizeMailHTML(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	clean(doc)

	var buf strings.Builder
	for _, style := range findAll(doc, atom.Style) {
		if err := html.Render(&buf, style); err != nil {
			return "", err
		}
	}
	body := findFirst(doc, atom.Body)
	if body == nil {
		return buf.String(), nil
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func clean(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && unsafeElements[c.DataAtom]) {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
	if n.Type != html.ElementNode {
		return
	}
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") &&
			strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// HTMLToText flattens HTML to readable plain text: block elements and
// <br> break lines, list items get a dash, head content is skipped.
func HTMLToText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	var b strings.Builder
	writeText(&b, doc)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Title:
			return
		case atom.Br:
			b.WriteString("\n")
			return
		case atom.Li:
			b.WriteString("\n- ")
		case atom.Td, atom.Th:
			b.WriteString("\t")
		}
		if blockElements[n.DataAtom] {
			b.WriteString("\n")
			defer b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.DataAtom == a {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, a)...)
	}
	return out
}
