package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/process"
)

// libreOfficeBackend converts office documents with a headless
// LibreOffice, one isolated profile per call.
type libreOfficeBackend struct {
	cfg *engineConfig
}

var _ Backend = (*libreOfficeBackend)(nil)

func newLibreOfficeBackend(cfg *engineConfig) *libreOfficeBackend {
	return &libreOfficeBackend{cfg: cfg}
}

func (l *libreOfficeBackend) Name() string   { return "libreoffice" }
func (l *libreOfficeBackend) Family() Family { return FamilyLibreOffice }

func (l *libreOfficeBackend) Extensions() []string {
	return concat(wordExtensions, sheetExtensions, slideExtensions, odfExtensions)
}

// Available looks for soffice on every call so an installation made
// during a run is picked up.
func (l *libreOfficeBackend) Available() bool { return l.binary() != "" }

// binary returns the soffice executable or "".
func (l *libreOfficeBackend) binary() string {
	if l.cfg.libreOfficePath != "" {
		if fileutil.FileExists(l.cfg.libreOfficePath) {
			return l.cfg.libreOfficePath
		}
		return ""
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	for _, pattern := range libreOfficeLocations() {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			if fileutil.FileExists(m) {
				return m
			}
		}
	}
	return ""
}

func libreOfficeLocations() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	case "darwin":
		return []string{"/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	}
	return []string{"/usr/bin/soffice", "/usr/lib/libreoffice/program/soffice", "/opt/libreoffice*/program/soffice"}
}

func (l *libreOfficeBackend) Convert(ctx context.Context, source, dest string) Outcome {
	start := time.Now()
	if err := checkEncryptedOOXML(source); err != nil {
		return finish(l.Name(), source, dest, start, err)
	}
	bin := l.binary()
	if bin == "" {
		return finish(l.Name(), source, dest, start, fmt.Errorf("%w: soffice not found", ErrBackendUnavailable))
	}

	outDir, err := os.MkdirTemp("", "doc2pdf-lo-out-*")
	if err != nil {
		return finish(l.Name(), source, dest, start, err)
	}
	defer os.RemoveAll(outDir)
	profile, err := os.MkdirTemp("", "doc2pdf-lo-profile-*")
	if err != nil {
		return finish(l.Name(), source, dest, start, err)
	}
	defer os.RemoveAll(profile)

	abs, err := filepath.Abs(source)
	if err != nil {
		return finish(l.Name(), source, dest, start, err)
	}
	res, err := process.Run(ctx, process.Command{
		Name: bin,
		Args: []string{
			"-env:UserInstallation=" + fileURL(profile),
			"--headless", "--norestore", "--nolockcheck",
			"--convert-to", "pdf",
			"--outdir", outDir,
			abs,
		},
		Timeout: l.cfg.libreOfficeTimeout,
	})
	if errors.Is(err, process.ErrTimeout) {
		l.sweep()
		return finish(l.Name(), source, dest, start, fmt.Errorf("%w: %v", ErrTimeout, err))
	}
	if err != nil {
		return finish(l.Name(), source, dest, start, nativePasswordError(err, abs, outDir, profile))
	}

	base := filepath.Base(abs)
	produced := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+pdfExtension)
	if !fileutil.FileExists(produced) {
		return finish(l.Name(), source, dest, start, nativePasswordError(fmt.Errorf("%w: %s", ErrNoOutput, res.Output()), abs, outDir, profile))
	}
	return finish(l.Name(), source, dest, start, fileutil.MoveFile(produced, dest))
}

func (l *libreOfficeBackend) sweep() {
	if !l.cfg.sweepOrphans {
		return
	}
	l.cfg.logger.Warn("killing leftover LibreOffice processes")
	for _, name := range []string{"soffice.bin", "soffice"} {
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		process.KillByName(name)
	}
}

// fileURL turns a local path into a file:// URL, Windows drives included.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
