package doc2pdf

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// archiveBackend unpacks an archive next to its destination and converts
// the members. Its output is a directory named after the archive.
type archiveBackend struct {
	cfg     *engineConfig
	members func() Chain
}

var _ Backend = (*archiveBackend)(nil)

func newArchiveBackend(cfg *engineConfig, members func() Chain) *archiveBackend {
	return &archiveBackend{cfg: cfg, members: members}
}

func (a *archiveBackend) Name() string         { return "archive" }
func (a *archiveBackend) Family() Family       { return FamilyContainer }
func (a *archiveBackend) Extensions() []string { return archiveExtensions }
func (a *archiveBackend) Available() bool      { return true }

// OutputDir returns the directory an archive expands into.
func (a *archiveBackend) OutputDir(source, dest string) string {
	return filepath.Join(filepath.Dir(dest), stem(source))
}

func (a *archiveBackend) Convert(ctx context.Context, source, dest string) Outcome {
	start := time.Now()
	out := a.OutputDir(source, dest)
	switch {
	case isDir(out) && !a.cfg.force:
		return Skipped(StatusSkippedExists, source, a.Name(), "output directory exists")
	case exists(out) && !isDir(out):
		out = freePath(out)
	}

	tmp, err := os.MkdirTemp("", "doc2pdf-archive-*")
	if err != nil {
		return finish(a.Name(), source, "", start, err)
	}
	defer os.RemoveAll(tmp)

	if err := a.extract(source, tmp); err != nil {
		return finish(a.Name(), source, "", start, err)
	}

	exp := newExpansion(a.cfg, a.members(), a, out, archiveConvertible)
	if err := exp.addTree(ctx, collapseSingleRoot(tmp, stem(source))); err != nil {
		return finish(a.Name(), source, "", start, err)
	}
	if exp.counts.total() == 0 {
		return finish(a.Name(), source, "", start, fmt.Errorf("%w: %s", ErrEmptyContainer, filepath.Base(source)))
	}
	return Succeeded(source, out, a.Name(), time.Since(start), exp.counts.String())
}

func (a *archiveBackend) extract(source, dir string) error {
	switch Extension(source) {
	case ".zip":
		return a.extractZip(source, dir)
	case ".tar":
		return a.withFile(source, func(f io.Reader) error { return a.extractTar(f, dir) })
	case ".tar.gz", ".tgz":
		return a.withFile(source, func(f io.Reader) error {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return err
			}
			defer gz.Close()
			return a.extractTar(gz, dir)
		})
	case ".tar.bz2", ".tbz2":
		return a.withFile(source, func(f io.Reader) error { return a.extractTar(bzip2.NewReader(f), dir) })
	case ".rar":
		return archivePasswordError(a.extractRar(source, dir))
	case ".7z":
		return archivePasswordError(a.extractSevenZip(source, dir))
	}
	return fmt.Errorf("%w: %s", ErrNoBackend, Extension(source))
}

// archivePasswordError maps the rar and 7z readers' encryption errors to
// ErrPasswordProtected.
func archivePasswordError(err error) error {
	var readErr *sevenzip.ReadError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rardecode.ErrArchiveEncrypted),
		errors.Is(err, rardecode.ErrArchivedFileEncrypted),
		errors.Is(err, rardecode.ErrBadPassword),
		errors.As(err, &readErr) && readErr.Encrypted:
		return fmt.Errorf("%w: %v", ErrPasswordProtected, err)
	}
	return err
}

func (a *archiveBackend) withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path) // #nosec G304 -- path is the file being converted
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func (a *archiveBackend) extractZip(source, dir string) error {
	r, err := zip.OpenReader(source)
	if err != nil {
		return err
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Bit 0 of the general purpose flags marks an encrypted entry.
		if f.Flags&0x1 != 0 {
			return fmt.Errorf("%w: zip entry %s is encrypted", ErrPasswordProtected, f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = a.writeEntry(dir, f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *archiveBackend) extractTar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := a.writeEntry(dir, hdr.Name, tr); err != nil {
			return err
		}
	}
}

func (a *archiveBackend) extractRar(source, dir string) error {
	rc, err := rardecode.OpenReader(source)
	if err != nil {
		return err
	}
	defer rc.Close()
	for {
		hdr, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.IsDir {
			continue
		}
		if err := a.writeEntry(dir, hdr.Name, rc); err != nil {
			return err
		}
	}
}

func (a *archiveBackend) extractSevenZip(source, dir string) error {
	r, err := sevenzip.OpenReader(source)
	if err != nil {
		return err
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = a.writeEntry(dir, f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// writeEntry stores one archive entry under dir. Entries whose name
// would land outside dir are dropped; every path component is
// sanitized the same way message attachments are.
func (a *archiveBackend) writeEntry(dir, name string, r io.Reader) error {
	rel := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if !filepath.IsLocal(rel) {
		a.cfg.logger.Warn("skipping unsafe archive entry", zap.String("entry", name))
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		parts[i] = sanitizeName(part, "")
	}
	return fileutil.CopyReader(r, filepath.Join(append([]string{dir}, parts...)...))
}
