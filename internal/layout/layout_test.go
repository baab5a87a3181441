package layout

// Notes:
// - Output is checked by reading it back with ledongthuc/pdf: page count
//   and extracted text. Visual layout is not asserted.

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

func readPDF(t *testing.T, path string) (pages int, text string) {
	t.Helper()
	f, r, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("pdf.Open(%s): %v", path, err)
	}
	defer f.Close()
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err == nil {
			sb.WriteString(s)
		}
	}
	return r.NumPage(), sb.String()
}

// ---------------------------------------------------------------------------
// TestDocument - Flowing content
// ---------------------------------------------------------------------------

func TestDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	d := New(Options{Title: "Quarterly"})
	d.Heading("Quarterly report")
	d.Fields([]Field{{Label: "From", Value: "ann@example.com"}, {Label: "Cc", Value: ""}})
	d.Paragraph("Café au lait")
	d.Preformatted("col1\tcol2", 9)
	d.Table([][]string{{"name", "qty"}, {"apples", "3"}, {"pears"}}, true)
	d.Mono(9)
	d.Span("tail", Color{R: 200}, 9)
	d.PageBreak()
	d.Paragraph("second page")

	if got := d.Pages(); got != 2 {
		t.Errorf("Pages() = %d, want 2", got)
	}
	if err := d.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	pages, text := readPDF(t, path)
	if pages != 2 {
		t.Errorf("page count = %d, want 2", pages)
	}
	for _, want := range []string{"Quarterly", "apples", "second"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if strings.Contains(text, "Cc:") {
		t.Error("empty field was rendered")
	}
}

func TestDocument_LongTextBreaksPages(t *testing.T) {
	t.Parallel()

	d := New(Options{Landscape: true})
	d.Preformatted(strings.Repeat("line of log output\n", 400), 8)

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if d.Pages() < 2 {
		t.Errorf("Pages() = %d, want at least 2", d.Pages())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestTable_Empty(t *testing.T) {
	t.Parallel()

	d := New(Options{})
	d.Table(nil, true)
	if d.Pages() != 1 {
		t.Errorf("Pages() = %d, want 1", d.Pages())
	}
}

// ---------------------------------------------------------------------------
// TestImagePDF - Single page sized to the image
// ---------------------------------------------------------------------------

func TestImagePDF(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "img.pdf")
	if err := ImagePDF(path, Image{Data: buf.Bytes(), Type: "PNG", Width: 40, Height: 20}, 96); err != nil {
		t.Fatalf("ImagePDF() error = %v", err)
	}
	if pages, _ := readPDF(t, path); pages != 1 {
		t.Errorf("page count = %d, want 1", pages)
	}
}

func TestImagePDF_NoDimensions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "img.pdf")
	err := ImagePDF(path, Image{Type: "PNG"}, 96)
	if !errors.Is(err, ErrRender) {
		t.Errorf("ImagePDF() error = %v, want ErrRender", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("file written despite error")
	}
}
