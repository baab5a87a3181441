// Package hints provides actionable hints for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a CI runner environment is detected.
func InCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// NoSandbox reports whether Chromium should run without its sandbox:
// requested through ROD_NO_SANDBOX=1, or in CI and containers.
func NoSandbox() bool {
	return os.Getenv("ROD_NO_SANDBOX") == "1" || InCI() || IsInContainer()
}

// ForBrowser returns hints for a missing or failing headless browser.
func ForBrowser() string {
	var hints []string
	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "install Chromium or set ROD_BROWSER_BIN / paths.browser")
	}
	return formatHints(hints)
}

// ForLibreOffice returns hints for a missing LibreOffice installation.
func ForLibreOffice() string {
	return format("install LibreOffice or set paths.libreoffice to the soffice binary")
}

// ForNativeOffice returns hints for a method that needs Microsoft Office.
func ForNativeOffice() string {
	if runtime.GOOS != "windows" {
		return format("Office automation needs Windows; use --method libreoffice or fallback")
	}
	return format("install Microsoft Office or use --method libreoffice")
}

// ForTimeout returns a hint about raising backend timeouts.
func ForTimeout() string {
	return format("for large documents, use --timeout or the timeouts section of the config")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or run doc2pdf init"
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "/doc2pdf/") {
			hint += "; or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
