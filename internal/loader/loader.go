// Package loader discovers LG files and parses them concurrently.
//
// Files found in a folder are parsed first; the files they reference through
// standalone links are then parsed in further rounds until no new file turns
// up. Each file is parsed once, so reference cycles terminate.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/parser"
)

// Extension is the file extension of LG sources
const Extension = ".lg"

// File is one parsed source file
type File struct {
	Path   string
	Result *parser.ParseResult
	Err    error // only set when Options.KeepGoing is on
}

// Options configures a Loader
type Options struct {
	Strict    bool
	Workers   int  // parallel parses, defaults to GOMAXPROCS
	KeepGoing bool // record failures on the File instead of aborting
	Logger    *slog.Logger

	// Exclude lists files that are never parsed, whether discovered in a
	// folder or referenced by another file
	Exclude []string
}

// Loader parses sets of LG files
type Loader struct {
	parser *parser.Parser
	opts   Options
	logger *slog.Logger
}

// New creates a loader around p
func New(p *parser.Parser, opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{parser: p, opts: opts, logger: logger}
}

// FindFiles recursively searches root for files ending with extension and
// returns them in lexical order
func FindFiles(root, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// LoadFolder parses every .lg file under dir plus everything they reference
func (l *Loader) LoadFolder(ctx context.Context, dir string) ([]File, error) {
	paths, err := FindFiles(dir, Extension)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	l.logger.Debug("Discovered LG files.", "dir", dir, "count", len(paths))
	return l.LoadFiles(ctx, paths)
}

// LoadFiles parses paths and, transitively, the files they reference. The
// result lists files in discovery order.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]File, error) {
	seen := make(map[string]bool)
	for _, p := range l.opts.Exclude {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		seen[abs] = true
	}

	var round []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		if seen[abs] {
			l.logger.Debug("Skipping duplicate or excluded file.", "file", abs)
			continue
		}
		seen[abs] = true
		round = append(round, abs)
	}

	var files []File
	for depth := 0; len(round) > 0; depth++ {
		parsed, err := l.parseRound(ctx, round)
		if err != nil {
			return nil, err
		}
		files = append(files, parsed...)

		var next []string
		for _, f := range parsed {
			if f.Result == nil {
				continue
			}
			for _, ref := range f.Result.AdditionalFilesToParse {
				target := ref
				if !filepath.IsAbs(target) {
					target = filepath.Join(filepath.Dir(f.Path), target)
				}
				target = filepath.Clean(target)
				if !seen[target] {
					seen[target] = true
					next = append(next, target)
				}
			}
		}
		if len(next) > 0 {
			l.logger.Debug("Following file references.", "depth", depth+1, "count", len(next))
		}
		round = next
	}
	return files, nil
}

func (l *Loader) parseRound(ctx context.Context, paths []string) ([]File, error) {
	files := make([]File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.parseFile(path)
			if err != nil {
				if !l.opts.KeepGoing {
					return err
				}
				l.logger.Error("Skipping file that failed to parse.", "file", path, "error", err)
				files[i] = File{Path: path, Err: err}
				return nil
			}
			files[i] = File{Path: path, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (l *Loader) parseFile(path string) (*parser.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := l.parser.Parse(string(data), l.opts.Strict)
	if err != nil {
		var lgErr *lg.Error
		if errors.As(err, &lgErr) {
			return nil, lgErr.WithFile(path)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	l.logger.Debug("Parsed file.", "file", path, "summary", res.LGObject.Summary())
	return res, nil
}

// Documents returns the parsed documents of files in order, skipping failed
// files and files without content
func Documents(files []File) []*lg.Document {
	docs := make([]*lg.Document, 0, len(files))
	for _, f := range files {
		if f.Result != nil && f.Result.LGObject != nil {
			docs = append(docs, f.Result.LGObject)
		}
	}
	return docs
}

// Failures returns the files that failed to parse
func Failures(files []File) []File {
	var failed []File
	for _, f := range files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}
