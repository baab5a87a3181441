package doc2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-doc2pdf/internal/layout"
)

// markupFontSize is the monospace size used for structured documents.
const markupFontSize = 8

// markupBackend pretty-prints structured text (XML, JSON, YAML) and lays
// it out with syntax colors.
type markupBackend struct {
	cfg   *engineConfig
	style *chroma.Style
}

var _ Backend = (*markupBackend)(nil)

func newMarkupBackend(cfg *engineConfig) *markupBackend {
	return &markupBackend{cfg: cfg, style: styles.Get("github")}
}

func (m *markupBackend) Name() string         { return "markup" }
func (m *markupBackend) Family() Family       { return FamilyLeaf }
func (m *markupBackend) Extensions() []string { return markupExtensions }
func (m *markupBackend) Available() bool      { return true }

func (m *markupBackend) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	data, err := os.ReadFile(source) // #nosec G304 -- file being converted
	if err != nil {
		return finish(m.Name(), source, dest, start, err)
	}
	text := decodeText(data)

	lexerName := "yaml"
	switch Extension(source) {
	case ".xml":
		lexerName = "xml"
		if pretty, err := prettyXML(text); err == nil {
			text = pretty
		}
	case ".json":
		lexerName = "json"
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(text), "", "  "); err == nil {
			text = buf.String()
		}
	}

	title := filepath.Base(source)
	doc := layout.New(layout.Options{Title: title})
	doc.Heading(title)
	if err := m.highlight(doc, lexerName, text); err != nil {
		doc.Preformatted(text, markupFontSize)
	}
	return finish(m.Name(), source, dest, start, doc.Save(dest))
}

// highlight writes text token by token in the style's colors.
func (m *markupBackend) highlight(doc *layout.Document, lexerName, text string) error {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		return errors.New("no lexer for " + lexerName)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return err
	}
	doc.Mono(markupFontSize)
	for tok := it(); tok != chroma.EOF; tok = it() {
		c := layout.Black
		if entry := m.style.Get(tok.Type); entry.Colour.IsSet() {
			c = layout.Color{R: int(entry.Colour.Red()), G: int(entry.Colour.Green()), B: int(entry.Colour.Blue())}
		}
		doc.Span(tok.Value, c, markupFontSize)
	}
	return nil
}

// prettyXML re-indents an XML document. Prefixes are kept as written.
func prettyXML(src string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = false
	var b strings.Builder
	depth := 0
	open := false // last token was a start element with no content yet
	indent := func() {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth))
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if b.Len() > 0 {
				indent()
			}
			b.WriteString("<" + qualified(t.Name))
			for _, a := range t.Attr {
				b.WriteString(" " + qualified(a.Name) + `="`)
				_ = xml.EscapeText(&b, []byte(a.Value))
				b.WriteByte('"')
			}
			b.WriteByte('>')
			depth++
			open = true
		case xml.EndElement:
			depth--
			if !open {
				indent()
			}
			b.WriteString("</" + qualified(t.Name) + ">")
			open = false
		case xml.CharData:
			text := bytes.TrimSpace(t)
			if len(text) == 0 {
				continue
			}
			if !open {
				indent()
			}
			_ = xml.EscapeText(&b, text)
		case xml.Comment:
			indent()
			b.WriteString("<!--" + string(t) + "-->")
			open = false
		case xml.ProcInst:
			if b.Len() > 0 {
				indent()
			}
			b.WriteString("<?" + t.Target + " " + string(t.Inst) + "?>")
		case xml.Directive:
			if b.Len() > 0 {
				indent()
			}
			b.WriteString("<!" + string(t) + ">")
		}
	}
	return b.String(), nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
