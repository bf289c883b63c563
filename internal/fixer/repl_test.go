package fixer

import (
	"bytes"
	"strings"
	"testing"
)

// newSession returns an interactive Fixer reading stdin from input, plus the
// buffers capturing its stdout and stderr.
func newSession(t *testing.T, input string) (*Fixer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	f := NewInteractive(WithStdio(strings.NewReader(input), &out, &errOut))
	t.Cleanup(f.Close)
	return f, &out, &errOut
}

func TestREPL_Statement(t *testing.T) {
	f, out, errOut := newSession(t, "meta.hello = 'replaced'\n")

	got, err := f.Fix(docSimple)
	if err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := "---\nhello: replaced\n---\n# Title\n"
	if got != want {
		t.Errorf("Fix() = %q, want %q", got, want)
	}
	if out.String() != "" {
		t.Errorf("stdout = %q, want empty for statements", out.String())
	}
	if errOut.String() != "" {
		t.Errorf("stderr = %q, want empty", errOut.String())
	}
}

func TestREPL_ExpressionsPrint(t *testing.T) {
	f, out, _ := newSession(t, "1 + 1\nmeta.hello\n'a' .. 'b'\n")

	if _, err := f.Fix(docSimple); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := "2\nworld\nab\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
}

func TestREPL_MultipleResults(t *testing.T) {
	f, out, _ := newSession(t, "1, 2\n")

	if _, err := f.Fix(docBare); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	if out.String() != "1\t2\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "1\t2\n")
	}
}

func TestREPL_NullPrints(t *testing.T) {
	f, out, _ := newSession(t, "null\n")

	if _, err := f.Fix(docBare); err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	if out.String() != "null\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "null\n")
	}
}

func TestREPL_ErrorsContinueSession(t *testing.T) {
	input := "this is not lua\nerror('boom')\nmeta.hello = 'ok'\n"
	f, _, errOut := newSession(t, input)

	got, err := f.Fix(docSimple)
	if err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := "---\nhello: ok\n---\n# Title\n"
	if got != want {
		t.Errorf("Fix() = %q, want %q", got, want)
	}
	errLines := strings.Count(errOut.String(), "Error:")
	if errLines != 2 {
		t.Errorf("stderr = %q, want two Error lines", errOut.String())
	}
	if !strings.Contains(errOut.String(), "boom") {
		t.Errorf("stderr = %q, should contain the runtime message", errOut.String())
	}
}

func TestREPL_BlankLinesSkipped(t *testing.T) {
	f, out, errOut := newSession(t, "\n   \nmeta.hello = 'x'\n\n")

	got, err := f.Fix(docSimple)
	if err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	want := "---\nhello: x\n---\n# Title\n"
	if got != want {
		t.Errorf("Fix() = %q, want %q", got, want)
	}
	if out.String() != "" || errOut.String() != "" {
		t.Errorf("output = %q / %q, want silence", out.String(), errOut.String())
	}
}

func TestREPL_InputSharedAcrossDocuments(t *testing.T) {
	f, _, _ := newSession(t, "meta = { n = 1 }\n")

	got, err := f.Fix(docBare)
	if err != nil {
		t.Fatalf("Fix() #1 error = %v", err)
	}
	want := "---\nn: 1\n---\n# Title\n"
	if got != want {
		t.Errorf("Fix() #1 = %q, want %q", got, want)
	}

	// Stdin was exhausted by the first document, so the second session ends
	// immediately and the document passes through untouched.
	got, err = f.Fix(docBare)
	if err != nil {
		t.Fatalf("Fix() #2 error = %v", err)
	}
	if got != docBare {
		t.Errorf("Fix() #2 = %q, want %q", got, docBare)
	}
}
