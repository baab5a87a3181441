package doc2pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DestinationPath computes the PDF path for source. With keepExt the
// original extension is kept ("report.docx.pdf"), otherwise it is
// replaced ("report.pdf"). PDF sources keep their own name. An empty
// destDir places the result next to the source.
func DestinationPath(source, destDir string, keepExt bool) string {
	dir := destDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := filepath.Base(source)
	switch {
	case Extension(base) == pdfExtension:
		// already the target name
	case keepExt:
		base += pdfExtension
	default:
		base = stem(base) + pdfExtension
	}
	return filepath.Join(dir, base)
}

// suffixedPath returns path with "_n" inserted before its extension.
func suffixedPath(path string, n int) string {
	dir, base := filepath.Split(path)
	ext := Extension(base)
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", base[:len(base)-len(ext)], n, ext))
}

// freePath probes path, path_1, path_2, ... and returns the first name
// not present on disk.
func freePath(path string) string {
	if !exists(path) {
		return path
	}
	for n := 1; ; n++ {
		candidate := suffixedPath(path, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// samePath reports whether a and b resolve to the same location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if resolved, err := filepath.EvalSymlinks(absA); err == nil {
		absA = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absB); err == nil {
		absB = resolved
	}
	if filepath.Separator == '\\' {
		return strings.EqualFold(absA, absB)
	}
	return absA == absB
}
