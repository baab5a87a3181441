package fileutil_test

// Notes:
// - TestWriteTempFile_CreateTempError modifies TMPDIR and cannot run in parallel.
// - MoveFile's cross-device branch is not exercised: it needs two filesystems.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid extension html", extension: "html", wantErr: nil},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows\\system32", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<html><body>mail</body></html>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.Contains(filepath.Base(path), "doc2pdf-") {
		t.Errorf("path %q does not contain prefix 'doc2pdf-'", path)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path %q does not have extension .html", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != "<html><body>mail</body></html>" {
		t.Errorf("file content = %q", data)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, cleanup, err := fileutil.WriteTempFile("content", "html")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil {
		t.Fatal("WriteTempFile() expected error when TMPDIR is invalid, got nil")
	}
	if !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %q, want error containing 'creating temp file'", err.Error())
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Existence checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(file, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantFile bool
		wantDir  bool
	}{
		{name: "regular file", path: file, wantFile: true, wantDir: false},
		{name: "directory", path: dir, wantFile: false, wantDir: true},
		{name: "missing path", path: filepath.Join(dir, "missing"), wantFile: false, wantDir: false},
		{name: "empty path", path: "", wantFile: false, wantDir: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantFile {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - File path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "doc2pdf", want: false},
		{input: "./doc2pdf.yaml", want: true},
		{input: "C:\\config\\doc2pdf.yaml", want: true},
		{input: "name.with.dots", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCopyReader / TestCopyFile / TestMoveFile - Copies and moves
// ---------------------------------------------------------------------------

func TestCopyReader_CreatesParents(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "a", "b", "member.txt")
	if err := fileutil.CopyReader(strings.NewReader("payload"), dst); err != nil {
		t.Fatalf("CopyReader() error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want %q", data, "payload")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestCopyReader_FailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "broken.bin")
	if err := fileutil.CopyReader(failingReader{}, dst); err == nil {
		t.Fatal("CopyReader() expected error, got nil")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("partial file left at %s", dst)
	}
}

func TestCopyFile_And_MoveFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	copied := filepath.Join(dir, "copy.txt")
	if err := fileutil.CopyFile(src, copied); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	if !fileutil.FileExists(src) {
		t.Error("CopyFile() removed the source")
	}

	moved := filepath.Join(dir, "moved.txt")
	if err := fileutil.MoveFile(copied, moved); err != nil {
		t.Fatalf("MoveFile() error = %v", err)
	}
	if fileutil.FileExists(copied) {
		t.Error("MoveFile() left the source behind")
	}
	data, _ := os.ReadFile(moved)
	if string(data) != "hello" {
		t.Errorf("moved content = %q, want %q", data, "hello")
	}
}

// ---------------------------------------------------------------------------
// TestChecksum - Content fingerprints
// ---------------------------------------------------------------------------

func TestChecksum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	b := filepath.Join(dir, "b.zip")
	c := filepath.Join(dir, "c.zip")
	for path, content := range map[string]string{a: "same", b: "same", c: "other"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sumA, err := fileutil.Checksum(a)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	sumB, _ := fileutil.Checksum(b)
	sumC, _ := fileutil.Checksum(c)

	if sumA != sumB {
		t.Errorf("identical files have different checksums: %s vs %s", sumA, sumB)
	}
	if sumA == sumC {
		t.Error("different files share a checksum")
	}
	if _, err := fileutil.Checksum(filepath.Join(dir, "missing")); err == nil {
		t.Error("Checksum() of missing file should fail")
	}
}
