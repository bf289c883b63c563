package commands

import (
	"os"
	"testing"
)

// withStdin replaces os.Stdin with a pipe carrying input for the duration of
// the test.
func withStdin(t *testing.T, input string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("writing stdin: %v", err)
	}
	w.Close()

	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		r.Close()
	})
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y accepts", input: "y\n", want: true},
		{name: "yes accepts", input: "yes\n", want: true},
		{name: "uppercase accepts", input: "YES\n", want: true},
		{name: "n declines", input: "n\n", want: false},
		{name: "empty line declines", input: "\n", want: false},
		{name: "anything else declines", input: "maybe\n", want: false},
		{name: "closed stdin declines", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStdin(t, tt.input)

			// Suppress the prompt
			oldOut := os.Stdout
			_, w, _ := os.Pipe()
			os.Stdout = w
			got := confirm("Proceed?")
			w.Close()
			os.Stdout = oldOut

			if got != tt.want {
				t.Errorf("confirm() with input %q = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitCommand_Metadata(t *testing.T) {
	if initCmd.Name() != "init" {
		t.Errorf("initCmd.Name() = %q, want %q", initCmd.Name(), "init")
	}
	for _, name := range []string{"yes", "force"} {
		if initCmd.Flags().Lookup(name) == nil {
			t.Errorf("init command missing --%s flag", name)
		}
	}
}
