package doc2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"time"

	"github.com/alnah/go-doc2pdf/internal/layout"
)

// imageDPI maps pixels to page points.
const imageDPI = 100

// imageBackend places an image on a page of the same size.
type imageBackend struct {
	cfg *engineConfig
}

var _ Backend = (*imageBackend)(nil)

func newImageBackend(cfg *engineConfig) *imageBackend { return &imageBackend{cfg: cfg} }

func (i *imageBackend) Name() string         { return "image" }
func (i *imageBackend) Family() Family       { return FamilyLeaf }
func (i *imageBackend) Extensions() []string { return imageExtensions }
func (i *imageBackend) Available() bool      { return true }

func (i *imageBackend) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	data, err := os.ReadFile(source) // #nosec G304 -- file being converted
	if err != nil {
		return finish(i.Name(), source, dest, start, err)
	}
	img, err := embeddable(data)
	if err != nil {
		return finish(i.Name(), source, dest, start, err)
	}
	return finish(i.Name(), source, dest, start, layout.ImagePDF(dest, img, imageDPI))
}

// embeddable returns data in a form gofpdf accepts. JPEG, GIF and plain
// 8-bit PNG pass through; everything else is re-encoded as PNG.
func embeddable(data []byte) (layout.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return layout.Image{}, fmt.Errorf("reading image: %w", err)
	}
	out := layout.Image{Data: data, Width: cfg.Width, Height: cfg.Height}
	switch {
	case format == "jpeg":
		out.Type = "JPG"
		return out, nil
	case format == "gif":
		out.Type = "GIF"
		return out, nil
	case format == "png" && !wideColor(cfg.ColorModel) && !interlacedPNG(data):
		out.Type = "PNG"
		return out, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return layout.Image{}, fmt.Errorf("decoding %s image: %w", format, err)
	}
	rgba := image.NewNRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return layout.Image{}, err
	}
	out.Data = buf.Bytes()
	out.Type = "PNG"
	return out, nil
}

func wideColor(m color.Model) bool {
	return m == color.RGBA64Model || m == color.NRGBA64Model || m == color.Gray16Model
}

// interlacedPNG reads the interlace byte of the IHDR chunk.
func interlacedPNG(data []byte) bool {
	return len(data) > 28 && data[28] != 0
}
