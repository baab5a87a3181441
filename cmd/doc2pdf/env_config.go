package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-doc2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // DOC2PDF_CONFIG: config file name or path
	Output      string        // DOC2PDF_OUTPUT: output directory
	Method      string        // DOC2PDF_METHOD: auto, office, libreoffice, fallback
	Timeout     time.Duration // DOC2PDF_TIMEOUT: timeout for every backend
	LogLevel    string        // DOC2PDF_LOG_LEVEL: console log level
	LogFile     string        // DOC2PDF_LOG_FILE: JSON log file
	LibreOffice string        // DOC2PDF_LIBREOFFICE: soffice binary
	Browser     string        // DOC2PDF_BROWSER: Chromium binary
}

// knownEnvVars lists valid DOC2PDF_* environment variables.
var knownEnvVars = map[string]bool{
	"DOC2PDF_CONFIG":      true,
	"DOC2PDF_OUTPUT":      true,
	"DOC2PDF_METHOD":      true,
	"DOC2PDF_TIMEOUT":     true,
	"DOC2PDF_LOG_LEVEL":   true,
	"DOC2PDF_LOG_FILE":    true,
	"DOC2PDF_LIBREOFFICE": true,
	"DOC2PDF_BROWSER":     true,
}

// loadEnvConfig reads the DOC2PDF_* variables. An unparsable timeout is
// ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DOC2PDF_CONFIG"),
		Output:      os.Getenv("DOC2PDF_OUTPUT"),
		Method:      os.Getenv("DOC2PDF_METHOD"),
		LogLevel:    os.Getenv("DOC2PDF_LOG_LEVEL"),
		LogFile:     os.Getenv("DOC2PDF_LOG_FILE"),
		LibreOffice: os.Getenv("DOC2PDF_LIBREOFFICE"),
		Browser:     os.Getenv("DOC2PDF_BROWSER"),
	}
	if timeout := os.Getenv("DOC2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// warnUnknownEnvVars prints a warning for unrecognized DOC2PDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOC2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment values on top of the config file.
// CLI flags are merged afterwards, so flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Output != "" {
		cfg.Conversion.Output = env.Output
	}
	if env.Method != "" {
		cfg.Conversion.Method = env.Method
	}
	if env.Timeout > 0 {
		setTimeouts(cfg, env.Timeout)
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Logging.File = env.LogFile
	}
	if env.LibreOffice != "" {
		cfg.Paths.LibreOffice = env.LibreOffice
	}
	if env.Browser != "" {
		cfg.Paths.Browser = env.Browser
	}
}

func setTimeouts(cfg *config.Config, d time.Duration) {
	cfg.Timeouts.Office = config.Duration(d)
	cfg.Timeouts.LibreOffice = config.Duration(d)
	cfg.Timeouts.Browser = config.Duration(d)
}
