package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmfix/fmfix/internal/scripts"
)

// resetScriptsFlags restores the scripts command's flags to their defaults.
func resetScriptsFlags(t *testing.T) {
	t.Helper()

	scriptsJSON, scriptsPick = false, false
	for _, name := range []string{"json", "pick"} {
		if f := scriptsCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

// writeLibrary creates a temporary script library with the given files.
func writeLibrary(t *testing.T, files map[string]string) *scripts.Library {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return scripts.NewLibrary(dir)
}

func TestScriptsCommand_Metadata(t *testing.T) {
	if scriptsCmd.Name() != "scripts" {
		t.Errorf("scriptsCmd.Name() = %q, want %q", scriptsCmd.Name(), "scripts")
	}
	for _, name := range []string{"json", "pick"} {
		if scriptsCmd.Flags().Lookup(name) == nil {
			t.Errorf("scripts command missing --%s flag", name)
		}
	}
}

func TestRunScriptsWithWriter_Table(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })

	lib := writeLibrary(t, map[string]string{
		"drafts.lua": "-- Mark every post as a draft\nmeta.draft = true\n",
		"tags.lua":   "-- Normalize tag casing\n",
	})

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, ""); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}

	for _, want := range []string{"NAME", "DESCRIPTION", "drafts.lua", "Mark every post as a draft", "tags.lua"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunScriptsWithWriter_Query(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })

	lib := writeLibrary(t, map[string]string{
		"drafts.lua": "-- Mark every post as a draft\n",
		"tags.lua":   "-- Normalize tag casing\n",
	})

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, "tags"); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}

	if !strings.Contains(out.String(), "tags.lua") {
		t.Errorf("output missing the matching script:\n%s", out.String())
	}
	if strings.Contains(out.String(), "drafts.lua") {
		t.Errorf("output lists a script the query excludes:\n%s", out.String())
	}
}

func TestRunScriptsWithWriter_NoMatch(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })

	lib := writeLibrary(t, map[string]string{"tags.lua": "-- Normalize tag casing\n"})

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, "zzz"); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}
	if !strings.Contains(out.String(), "No scripts found.") {
		t.Errorf("output = %q, want no-match notice", out.String())
	}
}

func TestRunScriptsWithWriter_EmptyLibrary(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })

	lib := scripts.NewLibrary(filepath.Join(t.TempDir(), "missing"))

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, ""); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}

	if !strings.Contains(out.String(), "Script library is empty.") {
		t.Errorf("output = %q, want empty-library notice", out.String())
	}
	if !strings.Contains(out.String(), lib.Dir()) {
		t.Errorf("output = %q, want the library path", out.String())
	}
}

func TestRunScriptsWithWriter_JSON(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })
	scriptsJSON = true

	lib := writeLibrary(t, map[string]string{
		"drafts.lua": "-- Mark every post as a draft\n",
		"tags.lua":   "-- Normalize tag casing\n",
	})

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, ""); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}

	var decoded []scripts.Script
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d scripts, want 2", len(decoded))
	}
	if decoded[0].Name != "drafts.lua" {
		t.Errorf("decoded[0].Name = %q, want %q", decoded[0].Name, "drafts.lua")
	}
	if decoded[0].Description != "Mark every post as a draft" {
		t.Errorf("decoded[0].Description = %q, want the comment line", decoded[0].Description)
	}
}

func TestRunScriptsWithWriter_JSONEmpty(t *testing.T) {
	resetScriptsFlags(t)
	t.Cleanup(func() { resetScriptsFlags(t) })
	scriptsJSON = true

	lib := scripts.NewLibrary(filepath.Join(t.TempDir(), "missing"))

	var out bytes.Buffer
	if err := runScriptsWithWriter(&out, lib, ""); err != nil {
		t.Fatalf("runScriptsWithWriter() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("output = %q, want an empty JSON array", out.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact length unchanged", input: "hello", maxLen: 5, want: "hello"},
		{name: "long string gets ellipsis", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "tiny limit cuts hard", input: "hello", maxLen: 3, want: "hel"},
		{name: "empty string", input: "", maxLen: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
