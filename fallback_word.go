package doc2pdf

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lu4p/cat"

	"github.com/alnah/go-doc2pdf/internal/layout"
)

// wordFallback renders the text of word-processing documents without
// any office suite. Layout is reduced to headings, paragraphs and tables.
type wordFallback struct {
	cfg *engineConfig
}

var _ Backend = (*wordFallback)(nil)

func newWordFallback(cfg *engineConfig) *wordFallback { return &wordFallback{cfg: cfg} }

func (w *wordFallback) Name() string         { return "fallback-word" }
func (w *wordFallback) Family() Family       { return FamilyFallback }
func (w *wordFallback) Extensions() []string { return []string{".docx", ".rtf", ".odt"} }
func (w *wordFallback) Available() bool      { return true }

func (w *wordFallback) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	if err := checkEncryptedOOXML(source); err != nil {
		return finish(w.Name(), source, dest, start, err)
	}

	var blocks []wordBlock
	var err error
	if Extension(source) == ".docx" {
		blocks, err = readDocx(source)
	} else {
		blocks, err = readPlainDocument(source)
	}
	if err != nil {
		return finish(w.Name(), source, dest, start, err)
	}

	title := filepath.Base(source)
	doc := layout.New(layout.Options{Title: title})
	for _, b := range blocks {
		switch {
		case b.rows != nil:
			doc.Table(b.rows, false)
		case b.heading:
			doc.Heading(b.text)
		default:
			doc.Paragraph(b.text)
		}
	}
	return finish(w.Name(), source, dest, start, doc.Save(dest))
}

// wordBlock is a paragraph, a heading or a table.
type wordBlock struct {
	text    string
	heading bool
	rows    [][]string
}

// readPlainDocument extracts rtf/odt text and splits it on blank lines.
func readPlainDocument(path string) ([]wordBlock, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	var blocks []wordBlock
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p := strings.TrimSpace(para); p != "" {
			blocks = append(blocks, wordBlock{text: p})
		}
	}
	return blocks, nil
}

// readDocx walks word/document.xml. Paragraphs with a Heading or Title
// style become headings; tables keep their cell grid.
func readDocx(path string) ([]wordBlock, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			if body, err = f.Open(); err != nil {
				return nil, err
			}
			break
		}
	}
	if body == nil {
		return nil, errors.New("word/document.xml missing")
	}
	defer body.Close()

	var (
		blocks  []wordBlock
		para    strings.Builder
		heading bool
		inText  bool
		depth   int // table nesting
		rows    [][]string
		row     []string
		cell    strings.Builder
	)
	dec := xml.NewDecoder(body)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
				if depth == 1 {
					rows = nil
				}
			case "tr":
				row = nil
			case "tc":
				cell.Reset()
			case "p":
				para.Reset()
				heading = false
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						v := strings.ToLower(a.Value)
						heading = strings.HasPrefix(v, "heading") || v == "title"
					}
				}
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				if depth > 0 {
					if cell.Len() > 0 && text != "" {
						cell.WriteByte('\n')
					}
					cell.WriteString(text)
				} else if text != "" {
					blocks = append(blocks, wordBlock{text: text, heading: heading})
				}
			case "tc":
				row = append(row, cell.String())
			case "tr":
				if depth == 1 {
					rows = append(rows, row)
				}
			case "tbl":
				depth--
				if depth == 0 && len(rows) > 0 {
					blocks = append(blocks, wordBlock{rows: rows})
				}
			}
		}
	}
	return blocks, nil
}
