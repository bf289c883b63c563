// Package processor runs a Fixer over a batch of files, rewriting each one
// in place and collecting per-file outcomes.
package processor

import (
	"io"
	"log/slog"
	"os"

	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/fixer"
	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/pkg/fileutil"
)

// Options configures a batch run.
type Options struct {
	// DryRun prints each rewritten document to Stdout instead of touching
	// the file.
	DryRun bool
	// MaxFileSize caps how large a document may be, in bytes. Zero applies
	// fileutil.DefaultMaxFileSize.
	MaxFileSize int64
	// Logger receives per-file progress at info level.
	Logger *slog.Logger
	// Stdout receives dry-run output. Defaults to os.Stdout.
	Stdout io.Writer
}

// Failure pairs a path with the error that stopped it.
type Failure struct {
	Path string
	Err  error
}

// Result collects a run's outcomes in input order.
type Result struct {
	OK     []string
	Failed []Failure
}

// HasFailures reports whether any file failed.
func (r *Result) HasFailures() bool { return len(r.Failed) > 0 }

// Total returns the number of files attempted.
func (r *Result) Total() int { return len(r.OK) + len(r.Failed) }

// Processor rewrites files through a Fixer, one at a time, in input order.
// Files are processed in order because the script's Lua state carries over
// from one document to the next.
type Processor struct {
	fix  *fixer.Fixer
	opts Options
}

// New returns a Processor running fix with the given options.
func New(fix *fixer.Fixer, opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Processor{fix: fix, opts: opts}
}

// Run processes every path in order. A file that fails is recorded and
// skipped; it never stops the rest of the batch.
func (p *Processor) Run(paths []string) *Result {
	res := &Result{}
	for _, path := range paths {
		if err := p.processFile(path); err != nil {
			p.opts.Logger.Info("failed to process file",
				"path", path,
				"error", err)
			res.Failed = append(res.Failed, Failure{Path: path, Err: err})
			continue
		}
		p.opts.Logger.Info("processed file", "path", path)
		res.OK = append(res.OK, path)
	}
	return res
}

// processFile runs one document through the fixer and replaces the file
// atomically, preserving its permission bits. In dry-run mode the rewritten
// document goes to stdout instead.
func (p *Processor) processFile(path string) error {
	data, err := fileutil.ReadFileWithLimit(path, p.opts.MaxFileSize)
	if err != nil {
		return err
	}

	fixed, err := p.fix.Fix(string(data))
	if err != nil {
		return err
	}

	if p.opts.DryRun {
		if _, err := io.WriteString(p.opts.Stdout, fixed); err != nil {
			return errors.Wrap(err, "writing document")
		}
		return nil
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fileutil.AtomicWriteFile(path, []byte(fixed), perm); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}
