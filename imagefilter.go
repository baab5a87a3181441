package doc2pdf

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Significance thresholds for images embedded in messages.
const (
	separatorAspect  = 10
	separatorMaxSide = 20
	tinyMaxBytes     = 15 * 1024
	tinyMaxSide      = 150
	tinyMaxArea      = 25000
	smallMaxBytes    = 30 * 1024
	smallMaxSide     = 200
)

// lowSignalName matches stems of boilerplate graphics.
var lowSignalName = regexp.MustCompile(`logo|signature|spacer|pixel|tracking|^blank$|^dot$|^clear$|^trans(parent)?$|^1x1$|^icon|footer|header`)

// isImageName reports whether name has an image extension.
func isImageName(name string) bool {
	return slices.Contains(imageExtensions, Extension(name))
}

// significantImage decides whether an embedded image is worth keeping.
// reason explains a drop.
func significantImage(name string, data []byte) (keep bool, reason string) {
	size := len(data)
	// Size unknown: keep.
	if size == 0 {
		return true, ""
	}
	w, h := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h = cfg.Width, cfg.Height
	}
	hasDims := w > 0 && h > 0

	if hasDims {
		long, short := max(w, h), min(w, h)
		if float64(long)/float64(short) > separatorAspect && short < separatorMaxSide {
			return false, "separator"
		}
		if size < tinyMaxBytes && ((w < tinyMaxSide && h < tinyMaxSide) || w*h < tinyMaxArea) {
			return false, "tiny"
		}
	} else if size < tinyMaxBytes {
		return false, "tiny, no dimensions"
	}

	small := size < smallMaxBytes || (hasDims && w < smallMaxSide && h < smallMaxSide)
	if small && lowSignalName.MatchString(strings.ToLower(stem(filepath.Base(name)))) {
		return false, "boilerplate"
	}
	return true, ""
}
