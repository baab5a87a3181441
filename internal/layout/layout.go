// Package layout renders simple documents (headings, paragraphs,
// preformatted text, tables, images) to PDF with gofpdf.
//
// Text is given as UTF-8 and translated to the cp1252 encoding of the
// PDF core fonts; characters outside it are replaced.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ErrRender wraps gofpdf errors.
var ErrRender = errors.New("PDF layout failed")

// Page geometry in millimetres.
const (
	margin     = 15.0
	lineHeight = 5.0
)

// Color is an RGB text color.
type Color struct{ R, G, B int }

// Black is the default text color.
var Black = Color{}

// Options configures a Document.
type Options struct {
	Title     string
	Landscape bool
}

// Field is one label/value line of a header block.
type Field struct {
	Label string
	Value string
}

// Document is a flowing A4 document.
type Document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// New starts a document with its first page.
func New(opts Options) *Document {
	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreator("doc2pdf", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.AddPage()
	return &Document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// Heading writes a bold title line.
func (d *Document) Heading(text string) {
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, 7, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

// Fields writes a label/value block, labels in bold.
func (d *Document) Fields(fields []Field) {
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		d.pdf.SetFont("Helvetica", "B", 10)
		label := d.tr(f.Label + ": ")
		d.pdf.CellFormat(d.pdf.GetStringWidth(label)+1, lineHeight, label, "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.MultiCell(0, lineHeight, d.tr(f.Value), "", "L", false)
	}
	d.Rule()
}

// Rule draws a horizontal separator.
func (d *Document) Rule() {
	w, _ := d.pdf.GetPageSize()
	d.pdf.Ln(2)
	y := d.pdf.GetY()
	d.pdf.SetDrawColor(180, 180, 180)
	d.pdf.Line(margin, y, w-margin, y)
	d.pdf.Ln(3)
}

// Paragraph writes proportional text; blank lines separate paragraphs.
func (d *Document) Paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
	d.pdf.Ln(1)
}

// Preformatted writes monospace text, expanding tabs.
func (d *Document) Preformatted(text string, size float64) {
	d.Mono(size)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, size*0.45, d.tr(expandTabs(text)), "", "L", false)
}

// Mono selects the monospace font for subsequent Span calls.
func (d *Document) Mono(size float64) {
	d.pdf.SetFont("Courier", "", size)
}

// Span writes flowing text in color c with the current font.
func (d *Document) Span(text string, c Color, size float64) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
	d.pdf.Write(size*0.45, d.tr(expandTabs(text)))
}

// Table writes rows as a grid. The first row is drawn as a header when
// header is true. Column widths follow content, scaled to the page.
func (d *Document) Table(rows [][]string, header bool) {
	if len(rows) == 0 {
		return
	}
	d.pdf.SetFont("Helvetica", "", 8)
	widths := d.columnWidths(rows)
	for i, row := range rows {
		bold := header && i == 0
		if bold {
			d.pdf.SetFont("Helvetica", "B", 8)
			d.pdf.SetFillColor(230, 230, 230)
		}
		for j, w := range widths {
			cell := ""
			if j < len(row) {
				cell = d.fit(d.tr(row[j]), w-1)
			}
			d.pdf.CellFormat(w, lineHeight, cell, "1", 0, "L", bold, 0, "")
		}
		d.pdf.Ln(-1)
		if bold {
			d.pdf.SetFont("Helvetica", "", 8)
		}
	}
	d.pdf.Ln(3)
}

func (d *Document) columnWidths(rows [][]string) []float64 {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	widths := make([]float64, cols)
	for _, r := range rows {
		for j, cell := range r {
			widths[j] = max(widths[j], d.pdf.GetStringWidth(d.tr(cell))+2)
		}
	}
	pageW, _ := d.pdf.GetPageSize()
	avail := pageW - 2*margin
	var total float64
	for j := range widths {
		widths[j] = min(max(widths[j], 8), 80)
		total += widths[j]
	}
	if total > avail {
		for j := range widths {
			widths[j] *= avail / total
		}
	}
	return widths
}

// fit truncates s so it renders within w.
func (d *Document) fit(s string, w float64) string {
	if d.pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && d.pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// PageBreak starts a new page.
func (d *Document) PageBreak() { d.pdf.AddPage() }

// Pages returns the number of pages so far.
func (d *Document) Pages() int { return d.pdf.PageNo() }

// WriteTo writes the PDF to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.WriteTo(w)
}

// Save writes the PDF to path. Nothing is written when rendering failed.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644) // #nosec G306 -- output documents are meant to be shared
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
