package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/dateutil"
	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/hints"
	"github.com/alnah/go-doc2pdf/internal/logging"
	"github.com/alnah/go-doc2pdf/internal/report"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput    = errors.New("no input specified")
	ErrUsage      = errors.New("invalid usage")
	ErrSomeFailed = errors.New("some files failed to convert")
)

// runConvert loads the configuration, runs the engine over the input and
// writes the journal and report.
func runConvert(ctx context.Context, args []string, flags *convertFlags, env *Environment) error {
	if len(args) == 0 {
		return ErrNoInput
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
	input := args[0]
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: %s", doc2pdf.ErrSourceNotFound, input)
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:     consoleLevel(flags, cfg),
		File:      cfg.Logging.File,
		FileLevel: cfg.Logging.FileLevel,
		Console:   env.Stderr,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer closeLog()

	start := env.Now()
	recordDir := recordsDir(input, cfg.Conversion.Output)
	session := report.NewSession(input, cfg.Conversion.Output, cfg.Conversion.Recursive)
	recorders := []doc2pdf.Recorder{session}

	var journal *report.Journal
	if cfg.Journal.Enabled {
		journal, err = report.OpenJournal(orDefault(cfg.Journal.Dir, recordDir), cfg.Journal.Name, cfg.Journal.ErrorsOnly, start)
		if err != nil {
			return fmt.Errorf("opening journal: %w%s", err, hints.ForOutputDirectory())
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Warn("closing journal", zap.Error(err))
			}
		}()
		recorders = append(recorders, journal)
	}

	opts := append(cfg.Options(),
		doc2pdf.WithLogger(logger),
		doc2pdf.WithRecorder(doc2pdf.Recorders(recorders...)),
		doc2pdf.WithExclude(recordGlobs(cfg)...),
	)
	engine, err := env.NewEngine(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("closing engine", zap.Error(err))
		}
	}()

	warnMissingBackends(engine, cfg, env)

	stats, runErr := engine.Convert(ctx, input, cfg.Conversion.Output)
	session.Finish()

	reportPath := ""
	if cfg.Report.Enabled && session.Totals().Files > 0 {
		if reportPath, err = session.Save(orDefault(cfg.Report.Dir, recordDir), cfg.Report.Name); err != nil {
			logger.Warn("writing report", zap.Error(err))
		}
	}

	if !flags.common.quiet {
		fmt.Fprintln(env.Stdout, session.Summary())
		if stats.Passes > 1 {
			fmt.Fprintf(env.Stdout, "%d passes over container output\n", stats.Passes)
		}
		if journal != nil {
			fmt.Fprintf(env.Stdout, "journal: %s\n", journal.Path())
		}
		if reportPath != "" {
			fmt.Fprintf(env.Stdout, "report:  %s\n", reportPath)
		}
		fmt.Fprintf(env.Stdout, "elapsed: %s\n", stats.Elapsed.Round(time.Millisecond))
	}

	if runErr != nil {
		return runErr
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSomeFailed, stats.Failed, stats.Total)
	}
	return nil
}

// loadConfig loads the config named by the flag, else by DOC2PDF_CONFIG,
// else returns the defaults.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := orDefault(flagValue, envValue)
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags applies flags set on the command line. Booleans only apply
// when given explicitly so a config value is not reset by a default.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.output != "" {
		cfg.Conversion.Output = flags.output
	}
	if flags.behavior.method != "" {
		cfg.Conversion.Method = flags.behavior.method
	}
	if flags.changed("recursive") {
		cfg.Conversion.Recursive = flags.selection.recursive
	}
	if len(flags.selection.extensions) > 0 {
		cfg.Conversion.Extensions = flags.selection.extensions
	}
	if flags.changed("force") {
		cfg.Conversion.Force = flags.behavior.force
	}
	if flags.changed("strip-ext") {
		cfg.Conversion.KeepExtension = !flags.behavior.stripExt
	}
	if flags.changed("delete-source") {
		cfg.Conversion.DeleteSource = flags.behavior.deleteSource
	}
	if flags.changed("hide-source") {
		cfg.Conversion.HideSource = flags.behavior.hideSource
	}
	if flags.behavior.timeout != "" {
		d, err := time.ParseDuration(flags.behavior.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid --timeout %q%s", ErrUsage, flags.behavior.timeout, hints.ForTimeout())
		}
		setTimeouts(cfg, d)
	}
	if flags.records.noJournal {
		cfg.Journal.Enabled = false
	}
	if flags.records.journalAll {
		cfg.Journal.ErrorsOnly = false
	}
	if flags.records.noReport {
		cfg.Report.Enabled = false
	}
	if flags.logs.level != "" {
		cfg.Logging.Level = flags.logs.level
	}
	if flags.logs.file != "" {
		cfg.Logging.File = flags.logs.file
	}
	return nil
}

// consoleLevel lets -q and -v override the configured level.
func consoleLevel(flags *convertFlags, cfg *config.Config) string {
	switch {
	case flags.common.quiet:
		return "error"
	case flags.common.verbose:
		return "debug"
	default:
		return cfg.Logging.Level
	}
}

// recordsDir is where the journal and report go by default: the output
// directory, else the input directory.
func recordsDir(input, output string) string {
	if output != "" {
		return output
	}
	if fileutil.DirExists(input) {
		return input
	}
	return filepath.Dir(input)
}

// recordGlobs keeps journals and reports of earlier runs out of the walk.
func recordGlobs(cfg *config.Config) []string {
	var globs []string
	for _, pattern := range []string{cfg.Journal.Name, cfg.Report.Name} {
		if g, err := dateutil.Glob(pattern); err == nil && g != "*" {
			globs = append(globs, g)
		}
	}
	return globs
}

// warnMissingBackends prints hints when the selected method has no usable
// document backend.
func warnMissingBackends(engine Engine, cfg *config.Config, env *Environment) {
	available := map[doc2pdf.Family]bool{}
	for _, b := range engine.Backends() {
		if b.Available {
			available[b.Family] = true
		}
	}
	method, _ := doc2pdf.ParseMethod(cfg.Conversion.Method)
	switch method {
	case doc2pdf.MethodOffice:
		if !available[doc2pdf.FamilyNative] {
			fmt.Fprintf(env.Stderr, "warning: no Office application found%s\n", hints.ForNativeOffice())
		}
	case doc2pdf.MethodLibreOffice:
		if !available[doc2pdf.FamilyLibreOffice] {
			fmt.Fprintf(env.Stderr, "warning: LibreOffice not found%s\n", hints.ForLibreOffice())
		}
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
