package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmfix/fmfix/internal/check"
	"github.com/fmfix/fmfix/internal/errors"
)

func TestCheckCommand_Metadata(t *testing.T) {
	if checkCmd.Name() != "check" {
		t.Errorf("checkCmd.Name() = %q, want %q", checkCmd.Name(), "check")
	}
	for _, name := range []string{"json", "format", "strict-delimiters"} {
		if checkCmd.Flags().Lookup(name) == nil {
			t.Errorf("check command missing --%s flag", name)
		}
	}
}

func TestRunCheckWithWriter_Clean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte("---\ntitle: x\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	var out bytes.Buffer
	if err := runCheckWithWriter(&out, check.New(), []string{path}); err != nil {
		t.Fatalf("runCheckWithWriter() error = %v", err)
	}
	if !strings.Contains(out.String(), "1 clean, 0 with problems") {
		t.Errorf("output = %q, want clean summary", out.String())
	}
}

func TestRunCheckWithWriter_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	if err := os.WriteFile(path, []byte("---\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	var out bytes.Buffer
	err := runCheckWithWriter(&out, check.New(), []string{path})
	if err == nil {
		t.Fatal("runCheckWithWriter() expected error")
	}

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *errors.ExitError", err)
	}
	if exitErr.Code != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", exitErr.Code, errors.ExitUser)
	}
	if !strings.Contains(out.String(), "empty metadata block") {
		t.Errorf("output = %q, want the finding listed", out.String())
	}
}

func TestRunCheckWithWriter_JSON(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	if err := os.WriteFile(good, []byte("---\ntitle: x\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	checkJSONFlag = true
	t.Cleanup(func() { checkJSONFlag = false })

	var out bytes.Buffer
	if err := runCheckWithWriter(&out, check.New(), []string{good}); err != nil {
		t.Fatalf("runCheckWithWriter() error = %v", err)
	}

	var decoded check.Result
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, out.String())
	}
	if len(decoded.Files) != 1 {
		t.Errorf("JSON lists %d files, want 1", len(decoded.Files))
	}
}

func TestCheckCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(good, []byte("---\ntitle: x\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.WriteFile(bad, []byte("---\ntitle: [\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	t.Run("clean file exits zero", func(t *testing.T) {
		stdout, _, err := runRootCommand(t, "check", good)
		if err != nil {
			t.Fatalf("check error = %v", err)
		}
		if !strings.Contains(stdout, "1 clean, 0 with problems") {
			t.Errorf("stdout = %q, want clean summary", stdout)
		}
	})

	t.Run("malformed file fails", func(t *testing.T) {
		stdout, _, err := runRootCommand(t, "check", bad)
		if err == nil {
			t.Fatal("check expected error")
		}
		if !strings.Contains(err.Error(), "1 of 1 files failed the check") {
			t.Errorf("error = %q, want failure count", err.Error())
		}
		if !strings.Contains(stdout, "malformed metadata block") {
			t.Errorf("stdout = %q, want the finding listed", stdout)
		}
	})
}
