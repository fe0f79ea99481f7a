// Package main is the entry point for the drawstorm command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/drawstorm/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app app.Options

	script      string
	list        bool
	showHistory bool
	query       string
	undo        int
	redo        int
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "drawstorm %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inspection never writes.
	if opts.list || opts.showHistory {
		opts.app.ReadOnly = true
	}
	opts.app.LogOutput = stderr
	opts.app.ScriptOutput = stdout

	application, err := app.New(ctx, opts.app)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	code := execute(ctx, application, opts, stdout, stderr)
	if err := application.Close(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

func execute(ctx context.Context, a *app.App, opts cliOptions, stdout, stderr io.Writer) int {
	switch {
	case opts.list:
		return listDocuments(ctx, a, stdout, stderr)
	case opts.showHistory:
		return printHistory(a, opts.query, stdout, stderr)
	}

	e := a.Engine()
	if opts.script != "" {
		if err := a.RunScript(ctx, opts.script); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	for i := 0; i < opts.undo; i++ {
		if !e.Undo() {
			break
		}
	}
	for i := 0; i < opts.redo; i++ {
		if !e.Redo() {
			break
		}
	}

	printSummary(a, stdout)
	return 0
}

// printHistory writes the history JSON labelled with its document, or the
// result of a gjson path query against it.
func printHistory(a *app.App, query string, stdout, stderr io.Writer) int {
	doc := a.Engine().Document()
	data, err := a.Engine().HistoryJSON()
	if err == nil {
		data, err = sjson.SetBytes(data, "document", map[string]string{"id": doc.ID, "name": doc.Name})
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if query == "" {
		fmt.Fprintln(stdout, string(data))
		return 0
	}
	result := gjson.GetBytes(data, query)
	if !result.Exists() {
		fmt.Fprintf(stderr, "Error: query %q matched nothing\n", query)
		return 1
	}
	fmt.Fprintln(stdout, result.String())
	return 0
}

func listDocuments(ctx context.Context, a *app.App, stdout, stderr io.Writer) int {
	docs, err := a.Documents(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPDATED\tDIGEST")
	for _, d := range docs {
		digest := d.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.Name, d.Size, d.UpdatedAt.Local().Format(time.DateTime), digest)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printSummary(a *app.App, w io.Writer) {
	e := a.Engine()
	doc := e.Document()
	fmt.Fprintf(w, "%s (%s)\n", doc.Name, doc.ID)
	for _, s := range doc.OrderedSheets() {
		marker := " "
		if s.ID == doc.CurrentSheetID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s: %d shapes, %d connectors\n", marker, s.Name, len(s.Shapes), len(s.Connectors))
	}
	size := e.HistorySize()
	fmt.Fprintf(w, "history: %d undo, %d redo\n", size.Undo, size.Redo)
	if desc, ok := e.UndoDescription(); ok {
		fmt.Fprintf(w, "next undo: %s\n", desc)
	}
	if desc, ok := e.RedoDescription(); ok {
		fmt.Fprintf(w, "next redo: %s\n", desc)
	}
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := pflag.NewFlagSet("drawstorm", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.app.ConfigPath, "config", "c", "", "Path to configuration file (.toml, .yaml, .json, .jsonc)")
	fs.StringVar(&opts.app.StoragePath, "db", "", "Path to the document database (overrides storage.path)")
	fs.StringVarP(&opts.app.DocumentID, "doc", "d", "", "Document ID to open (default: most recently saved)")
	fs.StringVar(&opts.app.DocumentName, "name", "", "Name for a newly created document")
	fs.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVarP(&opts.app.ReadOnly, "readonly", "R", false, "Open the document read-only")
	fs.StringVarP(&opts.script, "script", "s", "", "Run a Lua script against the document")
	fs.IntVar(&opts.undo, "undo", 0, "Undo this many steps")
	fs.IntVar(&opts.redo, "redo", 0, "Redo this many steps")
	fs.BoolVar(&opts.showHistory, "history", false, "Print the undo/redo history as JSON")
	fs.StringVarP(&opts.query, "query", "q", "", "gjson path applied to --history output, e.g. undo.#.type")
	fs.BoolVarP(&opts.list, "list", "l", false, "List stored documents")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "drawstorm - diagram documents with undoable edits\n\n")
		fmt.Fprintf(stderr, "Usage: drawstorm [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  drawstorm --list                     List stored documents\n")
		fmt.Fprintf(stderr, "  drawstorm -d flow -s seed.lua        Run a script against document flow\n")
		fmt.Fprintf(stderr, "  drawstorm -d flow --undo 2           Undo the last two edits\n")
		fmt.Fprintf(stderr, "  drawstorm -d flow --history          Print the stored history\n")
		fmt.Fprintf(stderr, "  drawstorm -d flow --history -q undo.#.type\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	switch opts.app.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.app.LogLevel)
	}
	if opts.query != "" && !opts.showHistory {
		return opts, fmt.Errorf("--query requires --history")
	}
	if opts.undo < 0 || opts.redo < 0 {
		return opts, fmt.Errorf("--undo and --redo must not be negative")
	}
	return opts, nil
}
