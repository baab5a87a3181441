package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// selectionFlags choose which files are converted.
type selectionFlags struct {
	recursive  bool
	extensions []string
}

// behaviorFlags control what happens around each conversion.
type behaviorFlags struct {
	method       string
	force        bool
	stripExt     bool
	deleteSource bool
	hideSource   bool
	timeout      string
}

// recordFlags control the journal and the report.
type recordFlags struct {
	noJournal  bool
	journalAll bool
	noReport   bool
}

// logFlags control the zap logger.
type logFlags struct {
	level string
	file  string
}

// convertFlags holds all flags for the convert command. fs is kept to ask
// which flags were set explicitly.
type convertFlags struct {
	common    commonFlags
	output    string
	selection selectionFlags
	behavior  behaviorFlags
	records   recordFlags
	logs      logFlags
	fs        *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every backend attempt")
}

func addSelectionFlags(fs *flag.FlagSet, f *selectionFlags) {
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "descend into subdirectories")
	fs.StringSliceVarP(&f.extensions, "ext", "e", nil, "only convert these extensions (repeatable)")
}

func addBehaviorFlags(fs *flag.FlagSet, f *behaviorFlags) {
	fs.StringVarP(&f.method, "method", "m", "", "auto, office, libreoffice or fallback")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite existing PDFs and folders")
	fs.BoolVar(&f.stripExt, "strip-ext", false, "name outputs report.pdf instead of report.docx.pdf")
	fs.BoolVar(&f.deleteSource, "delete-source", false, "delete sources after conversion")
	fs.BoolVar(&f.hideSource, "hide-source", false, "hide sources after conversion (Windows)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "timeout for each external conversion (e.g. 90s, 5m)")
}

func addRecordFlags(fs *flag.FlagSet, f *recordFlags) {
	fs.BoolVar(&f.noJournal, "no-journal", false, "do not write the CSV journal")
	fs.BoolVar(&f.journalAll, "journal-all", false, "journal successes too, not only problems")
	fs.BoolVar(&f.noReport, "no-report", false, "do not write the session report")
}

func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.StringVar(&f.level, "log-level", "", "console log level: debug, info, warn, error")
	fs.StringVar(&f.file, "log-file", "", "append JSON logs to this file")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, env *Environment) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &convertFlags{fs: fs}

	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to sources)")
	addCommonFlags(fs, &f.common)
	addSelectionFlags(fs, &f.selection)
	addBehaviorFlags(fs, &f.behavior)
	addRecordFlags(fs, &f.records)
	addLogFlags(fs, &f.logs)
	fs.SortFlags = false

	fs.Usage = func() { printConvertUsage(env.Stdout) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
