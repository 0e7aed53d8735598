// Command webui-log views and analyzes model event logs.
//
// Event logs are written by webui-shell when started with the -event-log
// flag.
//
// Usage:
//
//	webui-log <command> [flags] <file.elog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON lines or CSV
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only navigation list events
//	webui-log view -layer navlist shell.elog
//
//	# Show everything that happened to one shortcut
//	webui-log view -path /media/usb/Work shell.elog
//
//	# Keep only errors
//	webui-log filter -category error -o errors.elog shell.elog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cros-webui/webui-go/cmd/webui-log/commands"
)

const usage = `webui-log - Model Event Log Analyzer

Usage:
  webui-log <command> [flags] <file.elog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON lines or CSV
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "webui-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set whose usage text starts with summary.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "webui-log %s - %s\n\nUsage:\n  webui-log %s [flags] <file.elog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// logPath returns the single positional argument or exits.
func logPath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View log file in human-readable format")
	layer := fs.String("layer", "", "Filter by layer (volume, shortcut, navlist, capability, printer)")
	category := fs.String("category", "", "Filter by category (permutation, resolve, state, error)")
	path := fs.String("path", "", "Filter resolve, error and shortcut events by path")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	file := logPath(fs)

	filter := commands.ViewFilter{Path: *path}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(file, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export log file to JSON lines or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	file := logPath(fs)

	if err := commands.RunExport(file, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	modelID := fs.String("model-id", "", "Filter by model ID")
	path := fs.String("path", "", "Filter by path")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (volume, shortcut, navlist, capability, printer)")
	category := fs.String("category", "", "Filter by category (permutation, resolve, state, error)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	file := logPath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(file, commands.FilterOptions{
		Output:    *output,
		ModelID:   *modelID,
		Path:      *path,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the log file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	file := logPath(fs)

	if err := commands.RunStats(file, os.Stdout); err != nil {
		fail(err)
	}
}
