// Package cli hosts the Runner that cmd/htmlq's cobra command delegates
// to: it resolves Config into a compiled expression and a set of input
// documents, runs the engine over each, and renders the result to a
// Sink. Library packages (reliq/...) never log; Runner is the one place
// that does, threading the *slog.Logger the teacher's own pages.Handler
// pattern builds at the entrypoint.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dpotapov/htmlq/internal/config"
	"github.com/dpotapov/htmlq/internal/walk"
	"github.com/dpotapov/htmlq/internal/xmlcfg"
	"github.com/dpotapov/htmlq/reliq"
)

// Exit codes of spec.md §6.
const (
	ExitOK          = 0
	ExitSystemError = 5
	ExitHTMLError   = 10
	ExitScriptError = 15
)

// Runner executes one htmlq invocation end to end.
type Runner struct {
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner wires sensible defaults (os.Stdin/Stdout/Stderr, a discarding
// logger) so callers only need to override what they care about.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{Logger: logger, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run resolves cfg into documents and a compiled expression, executes the
// engine over each document, and renders to cfg.OutputFile (or Stdout).
// It returns the process exit code spec.md §6 mandates rather than
// letting the caller guess one from a generic error.
func (r *Runner) Run(cfg config.Config) int {
	querySrc, err := r.resolveQuery(cfg)
	if err != nil {
		return r.fail(err)
	}

	root, err := reliq.CompileExpr([]byte(querySrc))
	if err != nil {
		return r.fail(err)
	}

	inputs, err := r.resolveInputs(cfg)
	if err != nil {
		return r.fail(err)
	}

	sink, closeSink, err := r.openSink(cfg.OutputFile)
	if err != nil {
		return r.fail(err)
	}
	defer closeSink()

	opt := reliq.DefaultParseOptions()
	opt.URL = cfg.URL

	for _, in := range inputs {
		data, name, err := r.readInput(in)
		if err != nil {
			return r.fail(err)
		}
		doc, err := reliq.ParseDoc(name, data, opt)
		if err != nil {
			return r.fail(err)
		}
		result, err := reliq.NewEngine(doc).Run(root)
		if err != nil {
			return r.fail(err)
		}
		mode := reliq.OutputRaw
		if cfg.Mode == config.OutputStructured {
			mode = reliq.OutputStructured
		}
		if err := reliq.Render(doc, result, mode, sink); err != nil {
			return r.fail(err)
		}
		r.Logger.Debug("processed document", "name", name, "nodes", len(doc.Nodes))
	}
	return ExitOK
}

func (r *Runner) resolveQuery(cfg config.Config) (string, error) {
	var src string
	switch {
	case cfg.QueryExpr != "":
		src = cfg.QueryExpr
	case cfg.QueryFile != "":
		b, err := os.ReadFile(cfg.QueryFile)
		if err != nil {
			return "", &reliq.SystemError{Path: cfg.QueryFile, Err: err}
		}
		src = string(b)
	case cfg.ListMode:
		src = `@tag | "%n\t%I\t%l\t%s\n"`
	default:
		return "", fmt.Errorf("no query source given (-f FILE, -e EXPR, or a positional argument)")
	}
	if cfg.LibraryPath == "" || !strings.Contains(src, "#include") {
		return src, nil
	}
	f, err := os.Open(cfg.LibraryPath)
	if err != nil {
		return "", &reliq.SystemError{Path: cfg.LibraryPath, Err: err}
	}
	defer f.Close()
	lib, err := xmlcfg.Load(f)
	if err != nil {
		return "", err
	}
	return lib.Expand(src)
}

func (r *Runner) resolveInputs(cfg config.Config) ([]string, error) {
	if !cfg.Recursive {
		return cfg.InputFiles, nil
	}
	var out []string
	for _, root := range cfg.InputFiles {
		found, err := walk.Discover(root, walk.Options{FollowSymlinks: cfg.FollowLinks})
		if err != nil {
			return nil, &reliq.SystemError{Path: root, Err: err}
		}
		out = append(out, found...)
	}
	return out, nil
}

func (r *Runner) readInput(path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(r.Stdin)
		if err != nil {
			return nil, "", &reliq.SystemError{Path: "-", Err: err}
		}
		return b, "-", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &reliq.SystemError{Path: path, Err: err}
	}
	return b, path, nil
}

func (r *Runner) openSink(path string) (*reliq.Sink, func(), error) {
	if path == "" || path == "-" {
		sink := reliq.NewWriterSink(r.Stdout)
		return sink, func() { sink.Close() }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &reliq.SystemError{Path: path, Err: err}
	}
	sink := reliq.NewWriterSink(f)
	return sink, func() { sink.Close(); f.Close() }, nil
}

// fail logs err and returns the exit code matching its reliq error kind
// (spec.md §7's three error kinds map onto codes 5/10/15). Any error not
// recognized as one of the three (e.g. a usage error like a missing query
// source) falls back to ExitScriptError, the CLI's general "invocation
// was bad" code.
func (r *Runner) fail(err error) int {
	r.Logger.Error(err.Error())
	var sysErr *reliq.SystemError
	var htmlErr *reliq.HTMLError
	if errors.As(err, &sysErr) {
		return ExitSystemError
	}
	if errors.As(err, &htmlErr) {
		return ExitHTMLError
	}
	return ExitScriptError
}
