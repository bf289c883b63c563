package fixer

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/term"

	"github.com/fmfix/fmfix/internal/errors"
)

// repl reads lines from stdin until EOF and evaluates each one against the
// current document. Expression results print to stdout, errors print to
// stderr without ending the session. The scanner is shared across documents,
// so a session that hits EOF stays exhausted for the rest of the batch.
func (f *Fixer) repl() error {
	if f.lines == nil {
		f.lines = bufio.NewScanner(f.stdin)
	}
	prompt := f.interactive()
	for {
		if prompt {
			fmt.Fprint(f.stdout, "> ")
		}
		if !f.lines.Scan() {
			break
		}
		f.replLine(f.lines.Text())
	}
	return errors.Wrap(f.lines.Err(), "reading script input")
}

// interactive reports whether stdin is a terminal, which controls the prompt.
func (f *Fixer) interactive() bool {
	file, ok := f.stdin.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// replLine compiles and runs one line. The line is tried as an expression
// first so that a bare "meta.title" prints its value, then as a statement.
func (f *Fixer) replLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	fn, err := f.state.Load(strings.NewReader("return "+line), "repl")
	if err != nil {
		fn, err = f.state.Load(strings.NewReader(line), "repl")
		if err != nil {
			fmt.Fprintf(f.stderr, "Error: %s\n", err)
			return
		}
	}
	base := f.state.GetTop()
	f.state.Push(fn)
	if err := f.state.PCall(0, lua.MultRet, nil); err != nil {
		f.state.SetTop(base)
		fmt.Fprintf(f.stderr, "Error: %s\n", err)
		return
	}
	top := f.state.GetTop()
	if top == base {
		return
	}
	parts := make([]string, 0, top-base)
	for i := base + 1; i <= top; i++ {
		parts = append(parts, f.display(f.state.Get(i)))
	}
	f.state.SetTop(base)
	fmt.Fprintln(f.stdout, strings.Join(parts, "\t"))
}

// display renders one result value. The null sentinel prints as null rather
// than as an opaque userdata address.
func (f *Fixer) display(lv lua.LValue) string {
	if lv == f.null {
		return "null"
	}
	return lv.String()
}
