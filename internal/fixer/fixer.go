package fixer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// Fixer rewrites documents by running a Lua script, or an interactive
// session, against each one.
type Fixer struct {
	state  *lua.LState
	script *lua.LFunction

	format frontmatter.Format
	strict bool
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// null is the sentinel userdata bound to the null global. Scripts assign
	// it to metadata fields that must stay null in the output.
	null *lua.LUserData

	// lines buffers stdin once for the whole Fixer so interactive input is
	// not lost between documents.
	lines *bufio.Scanner
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithFormat selects the frontmatter dialect. The default is YAML.
func WithFormat(f frontmatter.Format) Option {
	return func(fx *Fixer) {
		fx.format = f
	}
}

// WithStrictDelimiters makes a document that opens a metadata block without
// closing it an error. The default treats such documents as all body.
func WithStrictDelimiters(strict bool) Option {
	return func(fx *Fixer) {
		fx.strict = strict
	}
}

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(fx *Fixer) {
		fx.logger = logger
	}
}

// WithStdio redirects the streams scripts interact with: the interactive
// loop reads stdin and prints results to stdout, yaml_dump prints to stdout,
// and script errors in the interactive loop go to stderr.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(fx *Fixer) {
		fx.stdin = stdin
		fx.stdout = stdout
		fx.stderr = stderr
	}
}

// New compiles source as a Lua chunk and returns a Fixer that runs it once
// per document. The name appears in script error messages, so callers pass
// the script's file path or a marker like "eval".
func New(source, name string, opts ...Option) (*Fixer, error) {
	f := newFixer(opts...)
	fn, err := f.state.Load(strings.NewReader(source), name)
	if err != nil {
		f.state.Close()
		return nil, &CompileError{Name: name, Err: err}
	}
	f.script = fn
	f.logger.Debug("script compiled", "name", name)
	return f, nil
}

// NewInteractive returns a Fixer with no script. Each document drops into a
// read-eval-print loop on stdin instead; the loop ends at EOF.
func NewInteractive(opts ...Option) *Fixer {
	return newFixer(opts...)
}

func newFixer(opts ...Option) *Fixer {
	f := &Fixer{
		state:  lua.NewState(),
		format: frontmatter.FormatYAML,
		logger: logging.NewDiscard(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.null = f.state.NewUserData()
	f.state.SetGlobal("null", f.null)
	f.state.SetGlobal("yaml_dump", f.state.NewFunction(f.yamlDump))
	return f
}

// Close releases the Lua state. The Fixer must not be used afterwards.
func (f *Fixer) Close() {
	f.state.Close()
}

// Fix runs the script, or one interactive session, against doc and returns
// the rewritten document.
//
// The frontmatter is decoded and bound to the meta global; a document with
// no frontmatter leaves meta unset. The body is bound to the content global
// by value, so assigning to content has no effect on the output. After the
// script returns, meta is read back: nil drops the frontmatter, anything
// else is encoded as the new block above the unchanged body.
func (f *Fixer) Fix(doc string) (string, error) {
	if f.strict && f.format.Unclosed(doc) {
		return "", &frontmatter.DecodeError{Err: frontmatter.ErrUnclosed}
	}
	meta, body, err := f.format.Parse(doc)
	if err != nil {
		return "", err
	}
	if meta != nil {
		f.state.SetGlobal("meta", f.toLua(meta))
	} else {
		f.state.SetGlobal("meta", lua.LNil)
	}
	f.state.SetGlobal("content", lua.LString(body))
	f.logger.Debug("document bound",
		"frontmatter", meta != nil,
		"body_bytes", len(body))

	if f.script != nil {
		f.state.Push(f.script)
		if err := f.state.PCall(0, lua.MultRet, nil); err != nil {
			f.state.SetTop(0)
			return "", &RuntimeError{Err: err}
		}
		f.state.SetTop(0)
	} else if err := f.repl(); err != nil {
		return "", err
	}

	var out *frontmatter.Value
	if lv := f.state.GetGlobal("meta"); lv != lua.LNil {
		out, err = f.fromLua(lv)
		if err != nil {
			return "", &ConversionError{Err: err}
		}
	}
	rendered, err := f.format.Render(out, body)
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

// yamlDump implements the yaml_dump global. It converts its argument the
// same way meta is read back and prints the YAML rendering to stdout.
// Values with no metadata representation raise a Lua error.
func (f *Fixer) yamlDump(L *lua.LState) int {
	lv := L.CheckAny(1)
	v, err := f.fromLua(lv)
	if err != nil {
		L.RaiseError("yaml_dump: %s", err.Error())
		return 0
	}
	block, err := frontmatter.FormatYAML.Encode(v)
	if err != nil {
		L.RaiseError("yaml_dump: %s", err.Error())
		return 0
	}
	fmt.Fprintln(f.stdout, string(block))
	return 0
}
