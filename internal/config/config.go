// Package config loads the YAML run configuration of the doc2pdf CLI and
// turns it into engine options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/dateutil"
	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/logging"
	"github.com/alnah/go-doc2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// AppDir is the directory under os.UserConfigDir holding named configs.
const AppDir = "doc2pdf"

// Default file name patterns (see dateutil.FileName).
const (
	DefaultJournalName = "[conversion_log_]" + dateutil.Stamp + "[.csv]"
	DefaultReportName  = "[conversion_report_]" + dateutil.Stamp + "[.txt]"
)

// Config holds everything a conversion run can be configured with.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Paths      PathsConfig      `yaml:"paths"`
	Logging    LoggingConfig    `yaml:"logging"`
	Journal    JournalConfig    `yaml:"journal"`
	Report     ReportConfig     `yaml:"report"`
}

// ConversionConfig selects what is converted and how.
type ConversionConfig struct {
	Method        string   `yaml:"method"` // auto, office, libreoffice, fallback
	Output        string   `yaml:"output"` // empty = next to the sources
	KeepExtension bool     `yaml:"keepExtension"`
	Recursive     bool     `yaml:"recursive"`
	Force         bool     `yaml:"force"`
	DeleteSource  bool     `yaml:"deleteSource"`
	HideSource    bool     `yaml:"hideSource"`
	Extensions    []string `yaml:"extensions"` // empty = every supported extension
}

// TimeoutsConfig bounds each external conversion.
type TimeoutsConfig struct {
	Office      Duration `yaml:"office"`
	LibreOffice Duration `yaml:"libreoffice"`
	Browser     Duration `yaml:"browser"`
}

// PathsConfig points at external programs. Empty means auto-detect.
type PathsConfig struct {
	LibreOffice string `yaml:"libreoffice"`
	Browser     string `yaml:"browser"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	FileLevel string `yaml:"fileLevel"`
}

// JournalConfig configures the per-file CSV journal.
type JournalConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ErrorsOnly bool   `yaml:"errorsOnly"`
	Dir        string `yaml:"dir"`  // empty = output directory or source directory
	Name       string `yaml:"name"` // date pattern
}

// ReportConfig configures the end-of-run text report.
type ReportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Name    string `yaml:"name"`
}

// Duration is a time.Duration written as "90s" or "2m" in YAML.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig mirrors the library defaults with journal and report on.
func DefaultConfig() *Config {
	return &Config{
		Conversion: ConversionConfig{
			Method:        string(doc2pdf.MethodAuto),
			KeepExtension: true,
		},
		Timeouts: TimeoutsConfig{
			Office:      Duration(doc2pdf.DefaultOfficeTimeout),
			LibreOffice: Duration(doc2pdf.DefaultLibreOfficeTimeout),
			Browser:     Duration(doc2pdf.DefaultBrowserTimeout),
		},
		Logging: LoggingConfig{Level: "info"},
		Journal: JournalConfig{Enabled: true, ErrorsOnly: true, Name: DefaultJournalName},
		Report:  ReportConfig{Enabled: true, Name: DefaultReportName},
	}
}

// Validate checks values the YAML decoder cannot.
func (c *Config) Validate() error {
	if _, err := doc2pdf.ParseMethod(c.Conversion.Method); err != nil {
		return fmt.Errorf("%w: conversion.method: %v", ErrInvalidConfig, err)
	}
	for i, ext := range c.Conversion.Extensions {
		if err := fileutil.ValidateExtension(ext); err != nil {
			return fmt.Errorf("%w: conversion.extensions[%d]: %v", ErrInvalidConfig, i, err)
		}
	}
	for name, d := range map[string]Duration{
		"timeouts.office":      c.Timeouts.Office,
		"timeouts.libreoffice": c.Timeouts.LibreOffice,
		"timeouts.browser":     c.Timeouts.Browser,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, time.Duration(d))
		}
	}
	if err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	if err := logging.ParseLevel(c.Logging.FileLevel); err != nil {
		return fmt.Errorf("%w: logging.fileLevel: %v", ErrInvalidConfig, err)
	}
	if _, err := dateutil.FileName(c.Journal.Name, time.Now()); c.Journal.Enabled && err != nil {
		return fmt.Errorf("%w: journal.name: %v", ErrInvalidConfig, err)
	}
	if _, err := dateutil.FileName(c.Report.Name, time.Now()); c.Report.Enabled && err != nil {
		return fmt.Errorf("%w: report.name: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Options converts the config into engine options. Logger and recorder
// options are added by the caller.
func (c *Config) Options() []doc2pdf.Option {
	opts := []doc2pdf.Option{
		doc2pdf.WithMethod(doc2pdf.Method(strings.ToLower(c.Conversion.Method))),
		doc2pdf.WithKeepExtension(c.Conversion.KeepExtension),
		doc2pdf.WithRecursive(c.Conversion.Recursive),
		doc2pdf.WithForce(c.Conversion.Force),
		doc2pdf.WithDeleteSource(c.Conversion.DeleteSource),
		doc2pdf.WithHideSource(c.Conversion.HideSource),
		doc2pdf.WithOfficeTimeout(time.Duration(c.Timeouts.Office)),
		doc2pdf.WithLibreOfficeTimeout(time.Duration(c.Timeouts.LibreOffice)),
		doc2pdf.WithBrowserTimeout(time.Duration(c.Timeouts.Browser)),
		doc2pdf.WithLibreOfficePath(c.Paths.LibreOffice),
		doc2pdf.WithBrowserPath(c.Paths.Browser),
	}
	if len(c.Conversion.Extensions) > 0 {
		opts = append(opts, doc2pdf.WithExtensions(c.Conversion.Extensions...))
	}
	return opts
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it is searched as name.yaml/.yml in the working directory,
// then in the user config directory. Missing sections keep defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists where LoadConfig looks for a named config.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing search path for name.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// Write stores cfg as YAML at path, refusing to replace an existing file
// unless force is set.
func Write(cfg *Config, path string, force bool) error {
	if !force && fileutil.FileExists(path) {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}
