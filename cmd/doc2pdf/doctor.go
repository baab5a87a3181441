package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string                  `json:"status"` // "ready", "warnings", "errors"
	Backends []doc2pdf.BackendStatus `json:"backends"`
	Browser  browserInfo             `json:"browser"`
	Env      envInfo                 `json:"environment"`
	System   systemInfo              `json:"system"`
	Warnings []string                `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print JSON")
	configName := fs.StringP("config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return exitReport(env, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(*configName, envCfg.ConfigPath)
	if err != nil {
		return exitReport(env, err)
	}
	applyEnvConfig(envCfg, cfg)
	engine, err := env.NewEngine(cfg.Options()...)
	if err != nil {
		return exitReport(env, err)
	}
	defer engine.Close()

	result := runDoctor(engine.Backends(), cfg.Paths.Browser)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(backends []doc2pdf.BackendStatus, browserPath string) *doctorResult {
	result := &doctorResult{
		Status:   "ready",
		Backends: backends,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Container:  hints.IsInContainer(),
			CI:         hints.InCI(),
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkBackends(result)
	checkBrowser(result, browserPath)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkBackends warns about unavailable document backends. Only a chain
// without any document renderer is an error.
func checkBackends(result *doctorResult) {
	documents := 0
	for _, b := range result.Backends {
		if b.Available {
			if b.Family == doc2pdf.FamilyNative || b.Family == doc2pdf.FamilyLibreOffice || b.Family == doc2pdf.FamilyFallback {
				documents++
			}
			continue
		}
		switch b.Family {
		case doc2pdf.FamilyLibreOffice:
			result.Warnings = append(result.Warnings, "LibreOffice not found"+hints.ForLibreOffice())
		case doc2pdf.FamilyNative:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s automation unavailable", b.Name))
		}
	}
	if documents == 0 {
		result.Errors = append(result.Errors, "no backend can convert office documents")
	}
}

// checkBrowser locates Chrome/Chromium the way the browser backend does.
func checkBrowser(result *doctorResult, configured string) {
	path := configured
	if path == "" {
		path = result.Env.BrowserBin
	}
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: HTML and Markdown will not convert"+hints.ForBrowser())
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", path))
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser binary chosen by the user
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
	result.Browser.Sandbox = !hints.NoSandbox()
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "doc2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "doc2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Backends (in chain order)")
	for _, b := range r.Backends {
		mark := "[OK]  "
		if !b.Available {
			mark = "[--]  "
		}
		fmt.Fprintf(w, "  %s%-15s %-12s %s\n", mark, b.Name, b.Family, strings.Join(b.Extensions, " "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
