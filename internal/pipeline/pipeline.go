// Package pipeline wires discovery, parsing, collation and output together.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gubarz/mslg/internal/collate"
	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/loader"
	"github.com/gubarz/mslg/internal/output"
	"github.com/gubarz/mslg/internal/parser"
)

// Options configures a pipeline run
type Options struct {
	InputFolder    string
	Strict         bool
	OutputFolder   string
	OutputBaseName string
	Mode           output.Mode
	Workers        int
	KeepGoing      bool
	Vocabulary     *lg.Vocabulary // nil selects the built-in tables
	Logger         *slog.Logger
	Stdout         io.Writer // print mode target, defaults to os.Stdout
	Clipboard      output.Clipboard
}

// Result is the outcome of a pipeline run
type Result struct {
	Document   *lg.Document
	Files      []loader.File
	OutputPath string // set in file mode
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// excluded returns the collated output file, which must never be read back
// as input when it lives under the input folder
func (o *Options) excluded() []string {
	if o.OutputBaseName == "" {
		return nil
	}
	return []string{output.Path(o.OutputFolder, o.OutputBaseName)}
}

// Load parses every file under opts.InputFolder, transitively, and collates
// them in discovery order
func Load(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.logger()

	p := parser.New(opts.Vocabulary, parser.Options{Logger: logger})
	l := loader.New(p, loader.Options{
		Strict:    opts.Strict,
		Workers:   opts.Workers,
		KeepGoing: opts.KeepGoing,
		Logger:    logger,
		Exclude:   opts.excluded(),
	})

	files, err := l.LoadFolder(ctx, opts.InputFolder)
	if err != nil {
		return nil, err
	}

	doc, err := collate.Collate(loader.Documents(files))
	if err != nil {
		return nil, err
	}
	logger.Info("Collated LG files.", "files", len(files), "failed", len(loader.Failures(files)), "summary", doc.Summary())

	return &Result{Document: doc, Files: files}, nil
}

// ParseCollateAndWriteOut loads and collates opts.InputFolder and writes the
// merged document to opts.OutputFolder/opts.OutputBaseName.lg, or prints or
// copies it depending on opts.Mode
func ParseCollateAndWriteOut(ctx context.Context, opts Options) (*Result, error) {
	res, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	w := output.NewWriter(opts.Mode, opts.Stdout)
	if opts.Clipboard != nil {
		w.WithClipboard(opts.Clipboard)
	}
	path, err := w.Emit(res.Document, opts.OutputFolder, opts.OutputBaseName)
	if err != nil {
		return nil, fmt.Errorf("writing collated output: %w", err)
	}
	if path != "" {
		opts.logger().Info("Wrote collated file.", "path", path)
	}
	res.OutputPath = path
	return res, nil
}
