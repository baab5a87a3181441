package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a file or a directory tree to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check which backends are usable on this machine")
	fmt.Fprintln(w, "  init       Write a default config file")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'doc2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf convert <file|dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert office documents, images, text, mail and archives to PDF.")
	fmt.Fprintln(w, "Each file goes through a chain of backends until one succeeds.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to sources)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -r, --recursive           Descend into subdirectories")
	fmt.Fprintln(w, "  -e, --ext <.ext>          Only these extensions (repeatable, comma list)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -m, --method <s>          auto, office, libreoffice, fallback")
	fmt.Fprintln(w, "  -f, --force               Overwrite existing PDFs and folders")
	fmt.Fprintln(w, "      --strip-ext           report.docx -> report.pdf (default report.docx.pdf)")
	fmt.Fprintln(w, "      --delete-source       Delete sources after conversion")
	fmt.Fprintln(w, "      --hide-source         Hide sources after conversion (Windows)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per external conversion (e.g. 90s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Records:")
	fmt.Fprintln(w, "      --no-journal          Do not write the CSV journal")
	fmt.Fprintln(w, "      --journal-all         Journal successes too")
	fmt.Fprintln(w, "      --no-report           Do not write the session report")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-file <path>     Append JSON logs to a file")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every backend attempt")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOC2PDF_CONFIG, DOC2PDF_OUTPUT, DOC2PDF_METHOD, DOC2PDF_TIMEOUT,")
	fmt.Fprintln(w, "  DOC2PDF_LOG_LEVEL, DOC2PDF_LOG_FILE, DOC2PDF_LIBREOFFICE, DOC2PDF_BROWSER")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 error, 2 usage, 3 input, 4 some files failed, 130 interrupted")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf doctor [-c config] [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List every backend with its availability and check the environment.")
	case "init":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf init [path] [--force]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Write the default configuration (default path: doc2pdf.yaml).")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
