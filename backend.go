package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Backend is one conversion technology. Convert must never panic: every
// failure is reported through the returned Outcome.
type Backend interface {
	Name() string
	Extensions() []string
	Available() bool
	Convert(ctx context.Context, source, dest string) Outcome
}

// Family groups backends by fidelity tier.
type Family string

// Backend families.
const (
	FamilyNative      Family = "native"
	FamilyLibreOffice Family = "libreoffice"
	FamilyFallback    Family = "fallback"
	FamilyLeaf        Family = "leaf"
	FamilyContainer   Family = "container"
)

// familyOf is implemented by backends that know their tier.
type familyOf interface {
	Family() Family
}

// BackendStatus describes a backend for diagnostics.
type BackendStatus struct {
	Name       string   `json:"name"`
	Family     Family   `json:"family"`
	Extensions []string `json:"extensions"`
	Available  bool     `json:"available"`
}

var compoundExtensions = []string{".tar.gz", ".tar.bz2"}

// Extension returns the lower-cased extension of path with its leading
// dot. Compound archive extensions such as ".tar.gz" are kept whole.
func Extension(path string) string {
	lower := strings.ToLower(filepath.Base(path))
	for _, ext := range compoundExtensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return ext
		}
	}
	return filepath.Ext(lower)
}

// stem returns the base name of path without its Extension.
func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(Extension(base))]
}

// claims reports whether b handles files with extension ext.
func claims(b Backend, ext string) bool {
	return ext != "" && slices.Contains(b.Extensions(), ext)
}

// finish turns the result of a backend attempt into an Outcome. Only
// errors wrapping ErrPasswordProtected become StatusSkippedPassword;
// backends classify their converter's text with nativePasswordError.
func finish(name, source, dest string, start time.Time, err error) Outcome {
	elapsed := time.Since(start)
	if err == nil {
		return Succeeded(source, dest, name, elapsed, "")
	}
	if errors.Is(err, ErrPasswordProtected) {
		o := Skipped(StatusSkippedPassword, source, name, "password protected")
		o.Elapsed = elapsed
		o.Err = err
		return o
	}
	return Failed(source, name, elapsed, err)
}

// safeConvert calls b.Convert and recovers a panic into a failure.
func safeConvert(ctx context.Context, b Backend, source, dest string) (o Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o = Failed(source, b.Name(), time.Since(start), fmt.Errorf("%w: %v", ErrBackendPanic, r))
		}
	}()
	return b.Convert(ctx, source, dest)
}
