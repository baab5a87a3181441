package layout

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// Image is an encoded image gofpdf can embed directly.
type Image struct {
	Data   []byte
	Type   string // "PNG", "JPG" or "GIF"
	Width  int    // pixels
	Height int    // pixels
}

// ImagePDF writes img on a single page sized to the image at dpi.
func ImagePDF(path string, img Image, dpi float64) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: image has no dimensions", ErrRender)
	}
	w := float64(img.Width) * 72 / dpi
	h := float64(img.Height) * 72 / dpi

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("doc2pdf", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: img.Type}
	pdf.RegisterImageOptionsReader("image", opts, bytes.NewReader(img.Data))
	pdf.ImageOptions("image", 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644) // #nosec G306 -- output documents are meant to be shared
}
