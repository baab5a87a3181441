package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// resolver maps an attribute value to its replacement. ok is false when
// the value must stay as is.
type resolver func(val string) (string, bool)

// RewriteRelativePaths turns relative img[src] and a[href] values into
// file:// URLs under sourceDir, so a page written to a temp file still
// finds the images next to its source. Empty sourceDir is a no-op.
//
// URLs, anchors, absolute paths and anything escaping sourceDir are left
// untouched. Media elements and srcset are ignored.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	return rewrite(htmlContent, func(val string) (string, bool) {
		if !isRelativePath(val) {
			return "", false
		}
		absPath := filepath.Join(absSourceDir, val)
		if !isPathUnderDir(absPath, absSourceDir) {
			return "", false
		}
		return pathToFileURL(absPath), true
	})
}

// RewriteContentIDs points cid: references of a mail body at the files
// holding the matching inline parts. files maps a Content-ID (without
// angle brackets) to an absolute path.
func RewriteContentIDs(htmlContent string, files map[string]string) (string, error) {
	if len(files) == 0 {
		return htmlContent, nil
	}
	return rewrite(htmlContent, func(val string) (string, bool) {
		if len(val) < 4 || !strings.EqualFold(val[:4], "cid:") {
			return "", false
		}
		id, err := url.PathUnescape(val[4:])
		if err != nil {
			id = val[4:]
		}
		path, ok := files[strings.Trim(id, "<>")]
		if !ok {
			return "", false
		}
		return pathToFileURL(path), true
	})
}

func rewrite(htmlContent string, resolve resolver) (string, error) {
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteNode(doc, resolve)
	return renderHTML(doc, isFragment)
}

// parseHTML parses full documents as documents and everything else as a
// body fragment held by a bare DocumentNode.
func parseHTML(content string) (*html.Node, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc, or only its children for a fragment.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, resolve resolver) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", resolve)
		case atom.A:
			rewriteAttr(n, "href", resolve)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, resolve)
	}
}

func rewriteAttr(n *html.Node, key string, resolve resolver) {
	for i, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		if val, ok := resolve(attr.Val); ok {
			n.Attr[i].Val = val
		}
	}
}

// isRelativePath reports whether path is neither a URL, an anchor nor
// an absolute path.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return !filepath.IsAbs(path)
}

func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL. Windows
// drive paths get a leading slash.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
