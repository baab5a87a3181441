package doc2pdf

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/alnah/go-doc2pdf/internal/layout"
)

// textBackend lays plain text out in a monospace font. CSV files become a
// table when they parse.
type textBackend struct {
	cfg *engineConfig
}

var _ Backend = (*textBackend)(nil)

func newTextBackend(cfg *engineConfig) *textBackend { return &textBackend{cfg: cfg} }

func (t *textBackend) Name() string         { return "text" }
func (t *textBackend) Family() Family       { return FamilyLeaf }
func (t *textBackend) Extensions() []string { return textExtensions }
func (t *textBackend) Available() bool      { return true }

func (t *textBackend) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	data, err := os.ReadFile(source) // #nosec G304 -- file being converted
	if err != nil {
		return finish(t.Name(), source, dest, start, err)
	}
	text := decodeText(data)
	title := filepath.Base(source)

	if Extension(source) == ".csv" {
		if rows, err := csv.NewReader(bytes.NewReader([]byte(text))).ReadAll(); err == nil && len(rows) > 0 {
			doc := layout.New(layout.Options{Title: title, Landscape: true})
			doc.Heading(title)
			doc.Table(rows, true)
			return finish(t.Name(), source, dest, start, doc.Save(dest))
		}
	}

	doc := layout.New(layout.Options{Title: title})
	doc.Heading(title)
	doc.Preformatted(text, 9)
	return finish(t.Name(), source, dest, start, doc.Save(dest))
}

// decodeText returns data as UTF-8. UTF-16 is recognised by its byte
// order mark; invalid UTF-8 is read as Windows-1252.
func decodeText(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out)
		}
	case utf8.Valid(data):
		return string(data)
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	return string(data)
}
