// Package logging builds the zap logger used by the CLI: a console core on
// stderr and, when a log file is configured, a JSON core appending to it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects levels and the optional log file.
type Config struct {
	Level     string    // console level: debug, info, warn, error
	File      string    // JSON log file; empty disables it
	FileLevel string    // file level; empty means Level
	Console   io.Writer // defaults to os.Stderr
}

// New returns the logger and a cleanup function that syncs and closes the
// log file. The cleanup is safe to call on every path.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := parseLevel(cfg.Level, zapcore.InfoLevel)
	if err != nil {
		return nil, nil, err
	}
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	closeFile := func() {}
	if cfg.File != "" {
		fileLevel, err := parseLevel(cfg.FileLevel, level)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- user-chosen log file
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f), fileLevel))
		closeFile = func() { _ = f.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}

// ParseLevel validates a level name. The empty string is accepted.
func ParseLevel(s string) error {
	_, err := parseLevel(s, zapcore.InfoLevel)
	return err
}

func parseLevel(s string, def zapcore.Level) (zapcore.Level, error) {
	if s == "" {
		return def, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return def, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
