package doc2pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alnah/go-doc2pdf/internal/layout"
)

// sheetFallback prints every worksheet of a workbook as a plain table.
type sheetFallback struct {
	cfg *engineConfig
}

var _ Backend = (*sheetFallback)(nil)

func newSheetFallback(cfg *engineConfig) *sheetFallback { return &sheetFallback{cfg: cfg} }

func (s *sheetFallback) Name() string         { return "fallback-sheet" }
func (s *sheetFallback) Family() Family       { return FamilyFallback }
func (s *sheetFallback) Extensions() []string { return []string{".xlsx", ".xlsm"} }
func (s *sheetFallback) Available() bool      { return true }

func (s *sheetFallback) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	if err := checkEncryptedOOXML(source); err != nil {
		return finish(s.Name(), source, dest, start, err)
	}
	f, err := excelize.OpenFile(source)
	if err != nil {
		return finish(s.Name(), source, dest, start, nativePasswordError(err, source))
	}
	defer f.Close()

	title := filepath.Base(source)
	doc := layout.New(layout.Options{Title: title, Landscape: true})
	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return finish(s.Name(), source, dest, start, fmt.Errorf("reading sheet %q: %w", name, err))
		}
		if i > 0 {
			doc.PageBreak()
		}
		doc.Heading(name)
		rows = trimRows(rows)
		if len(rows) == 0 {
			doc.Paragraph("(empty sheet)")
			continue
		}
		doc.Table(rows, true)
	}
	return finish(s.Name(), source, dest, start, doc.Save(dest))
}

// trimRows drops trailing empty rows and trailing empty cells.
func trimRows(rows [][]string) [][]string {
	for i, r := range rows {
		end := len(r)
		for end > 0 && r[end-1] == "" {
			end--
		}
		rows[i] = r[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}
