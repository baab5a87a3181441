package doc2pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// passthroughBackend copies PDFs to a distinct output directory.
type passthroughBackend struct {
	cfg *engineConfig
}

var _ Backend = (*passthroughBackend)(nil)

func newPassthroughBackend(cfg *engineConfig) *passthroughBackend {
	return &passthroughBackend{cfg: cfg}
}

func (p *passthroughBackend) Name() string         { return "passthrough" }
func (p *passthroughBackend) Family() Family       { return FamilyContainer }
func (p *passthroughBackend) Extensions() []string { return []string{pdfExtension} }
func (p *passthroughBackend) Available() bool      { return true }

func (p *passthroughBackend) Convert(_ context.Context, source, dest string) Outcome {
	start := time.Now()
	if samePath(source, dest) {
		return Skipped(StatusSkippedPDF, source, p.Name(), "already a PDF")
	}
	if err := checkPDFHeader(source); err != nil {
		return finish(p.Name(), source, dest, start, err)
	}
	return finish(p.Name(), source, dest, start, fileutil.CopyFile(source, dest))
}

func checkPDFHeader(path string) error {
	f, err := os.Open(path) // #nosec G304 -- file being converted
	if err != nil {
		return err
	}
	defer f.Close()
	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, []byte("%PDF-")) {
		return fmt.Errorf("%s is not a PDF file", path)
	}
	return nil
}
