package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/process"
)

// probeTimeout bounds registry lookups for COM servers.
const probeTimeout = 10 * time.Second

// officeApp describes one Office application driven through COM.
type officeApp struct {
	name       string
	progID     string
	image      string // process image swept after a timeout
	extensions []string
	script     string
}

// The scripts open documents read-only with a dummy password: a
// protected file fails with a password error instead of prompting.
const (
	wordScript = `$ErrorActionPreference = 'Stop'
$app = New-Object -ComObject Word.Application
try {
  $app.Visible = $false
  $app.DisplayAlerts = 0
  $doc = $app.Documents.Open($env:DOC2PDF_SOURCE, $false, $true, $false, '__doc2pdf__', '__doc2pdf__')
  try { $doc.ExportAsFixedFormat($env:DOC2PDF_DEST, 17) } finally { $doc.Close($false) }
} finally {
  $app.Quit()
  [void][System.Runtime.InteropServices.Marshal]::ReleaseComObject($app)
}`

	excelScript = `$ErrorActionPreference = 'Stop'
$app = New-Object -ComObject Excel.Application
try {
  $app.Visible = $false
  $app.DisplayAlerts = $false
  $wb = $app.Workbooks.Open($env:DOC2PDF_SOURCE, 0, $true, 5, '__doc2pdf__')
  try { $wb.ExportAsFixedFormat(0, $env:DOC2PDF_DEST) } finally { $wb.Close($false) }
} finally {
  $app.Quit()
  [void][System.Runtime.InteropServices.Marshal]::ReleaseComObject($app)
}`

	powerPointScript = `$ErrorActionPreference = 'Stop'
$app = New-Object -ComObject PowerPoint.Application
try {
  $app.DisplayAlerts = 1
  $p = $app.Presentations.Open($env:DOC2PDF_SOURCE + '::__doc2pdf__', -1, 0, 0)
  try { $p.SaveAs($env:DOC2PDF_DEST, 32) } finally { $p.Close() }
} finally {
  $app.Quit()
  [void][System.Runtime.InteropServices.Marshal]::ReleaseComObject($app)
}`
)

// officeBackend converts with a native Office application on Windows.
type officeBackend struct {
	cfg *engineConfig
	app officeApp
}

var _ Backend = (*officeBackend)(nil)

func newWordBackend(cfg *engineConfig) *officeBackend {
	return &officeBackend{cfg: cfg, app: officeApp{
		name: "word", progID: "Word.Application", image: "WINWORD.EXE",
		extensions: wordExtensions, script: wordScript,
	}}
}

func newExcelBackend(cfg *engineConfig) *officeBackend {
	return &officeBackend{cfg: cfg, app: officeApp{
		name: "excel", progID: "Excel.Application", image: "EXCEL.EXE",
		extensions: sheetExtensions, script: excelScript,
	}}
}

func newPowerPointBackend(cfg *engineConfig) *officeBackend {
	return &officeBackend{cfg: cfg, app: officeApp{
		name: "powerpoint", progID: "PowerPoint.Application", image: "POWERPNT.EXE",
		extensions: slideExtensions, script: powerPointScript,
	}}
}

func (o *officeBackend) Name() string         { return o.app.name }
func (o *officeBackend) Family() Family       { return FamilyNative }
func (o *officeBackend) Extensions() []string { return o.app.extensions }

// Available checks for PowerShell and the registered COM server each
// time it is called.
func (o *officeBackend) Available() bool {
	if runtime.GOOS != "windows" {
		return false
	}
	ps := powerShell()
	if ps == "" {
		return false
	}
	_, err := process.Run(context.Background(), process.Command{
		Name:    "reg",
		Args:    []string{"query", `HKEY_CLASSES_ROOT\` + o.app.progID},
		Timeout: probeTimeout,
	})
	return err == nil
}

func powerShell() string {
	for _, name := range []string{"powershell.exe", "pwsh.exe"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func (o *officeBackend) Convert(ctx context.Context, source, dest string) Outcome {
	start := time.Now()
	if err := checkEncryptedOOXML(source); err != nil {
		return finish(o.Name(), source, dest, start, err)
	}
	ps := powerShell()
	if ps == "" {
		return finish(o.Name(), source, dest, start, fmt.Errorf("%w: PowerShell not found", ErrBackendUnavailable))
	}
	src, err := filepath.Abs(source)
	if err != nil {
		return finish(o.Name(), source, dest, start, err)
	}
	dst, err := filepath.Abs(dest)
	if err != nil {
		return finish(o.Name(), source, dest, start, err)
	}

	_, err = process.Run(ctx, process.Command{
		Name:    ps,
		Args:    []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", o.app.script},
		Env:     []string{"DOC2PDF_SOURCE=" + src, "DOC2PDF_DEST=" + dst},
		Timeout: o.cfg.officeTimeout,
	})
	if errors.Is(err, process.ErrTimeout) {
		if o.cfg.sweepOrphans {
			o.cfg.logger.Warn("killing leftover Office processes", zap.String("image", o.app.image))
			process.KillByName(o.app.image)
		}
		return finish(o.Name(), source, dest, start, fmt.Errorf("%w: %v", ErrTimeout, err))
	}
	if err != nil {
		return finish(o.Name(), source, dest, start, nativePasswordError(err, src, dst))
	}
	if !fileutil.FileExists(dst) {
		return finish(o.Name(), source, dest, start, fmt.Errorf("%w: %s", ErrNoOutput, o.app.progID))
	}
	return finish(o.Name(), source, dest, start, nil)
}
