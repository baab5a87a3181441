package doc2pdf

// Notes:
// - significantImage is driven with real PNG encodings so both byte size
//   and decoded dimensions are what the filter sees in a message.
// - Uniform images compress to a few hundred bytes; noisy ones stay large.

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
)

func encodedPNG(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := rand.New(rand.NewSource(1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 40, G: 90, B: 160, A: 255}
			if noisy {
				c = color.RGBA{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256)), A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// TestSignificantImage - Size, shape and name heuristics
// ---------------------------------------------------------------------------

func TestSignificantImage(t *testing.T) {
	t.Parallel()

	flat := encodedPNG(t, 400, 300, false)
	noisy := encodedPNG(t, 400, 300, true)
	if len(noisy) < smallMaxBytes {
		t.Fatalf("noisy fixture too small: %d bytes", len(noisy))
	}

	tests := []struct {
		name       string
		file       string
		data       []byte
		wantKeep   bool
		wantReason string
	}{
		{"separator bar", "line.png", encodedPNG(t, 600, 5, false), false, "separator"},
		{"tiny icon", "image001.png", encodedPNG(t, 40, 40, false), false, "tiny"},
		{"unreadable and small", "image002.png", []byte("not an image"), false, "tiny, no dimensions"},
		{"empty data", "image003.png", nil, true, ""},
		{"unreadable but large", "scan.png", bytes.Repeat([]byte{0x42}, 20*1024), true, ""},
		{"small with normal name", "photo.png", flat, true, ""},
		{"small logo", "Company_Logo.png", flat, false, "boilerplate"},
		{"small spacer", "spacer.png", flat, false, "boilerplate"},
		{"exact blank stem", "blank.png", flat, false, "boilerplate"},
		{"blank inside a word is kept", "blankets.png", flat, true, ""},
		{"large logo is kept", "logo.png", noisy, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			keep, reason := significantImage(tt.file, tt.data)
			if keep != tt.wantKeep || reason != tt.wantReason {
				t.Errorf("significantImage(%q) = (%v, %q), want (%v, %q)",
					tt.file, keep, reason, tt.wantKeep, tt.wantReason)
			}
		})
	}
}

func TestIsImageName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"a.PNG":    true,
		"b.jpeg":   true,
		"c.webp":   true,
		"d.pdf":    false,
		"noext":    false,
		"e.tiff":   true,
		"f.png.gz": false,
	} {
		if got := isImageName(name); got != want {
			t.Errorf("isImageName(%q) = %v, want %v", name, got, want)
		}
	}
}
