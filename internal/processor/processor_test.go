package processor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fmfix/fmfix/internal/fixer"
	"github.com/fmfix/fmfix/pkg/fileutil"
)

const sampleDoc = "---\nhello: world\n---\n# Title\n"

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func newFixer(t *testing.T, script string) *fixer.Fixer {
	t.Helper()
	f, err := fixer.New(script, "test.lua")
	if err != nil {
		t.Fatalf("fixer.New() error = %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestRun_RewritesFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.md", sampleDoc)
	b := writeDoc(t, dir, "b.md", sampleDoc)

	f := newFixer(t, "count = (count or 0) + 1\nmeta.n = count")
	p := New(f, Options{})

	res := p.Run([]string{a, b})
	if res.HasFailures() {
		t.Fatalf("Run() failures = %v", res.Failed)
	}
	if res.Total() != 2 {
		t.Errorf("Total() = %d, want 2", res.Total())
	}

	// Files are processed in input order, so the script's counter pins the
	// order down.
	for i, path := range []string{a, b} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		want := "---\nhello: world\nn: " + strconv.Itoa(i+1) + "\n---\n# Title\n"
		if string(data) != want {
			t.Errorf("%s = %q, want %q", filepath.Base(path), data, want)
		}
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.md", sampleDoc)
	bad := writeDoc(t, dir, "bad.md", "---\n---\nbody\n")
	after := writeDoc(t, dir, "after.md", sampleDoc)

	f := newFixer(t, "meta.hello = 'fixed'")
	p := New(f, Options{})

	res := p.Run([]string{good, bad, after})
	if len(res.OK) != 2 {
		t.Errorf("OK = %v, want 2 entries", res.OK)
	}
	if len(res.Failed) != 1 || res.Failed[0].Path != bad {
		t.Fatalf("Failed = %v, want one entry for %s", res.Failed, bad)
	}

	// The failing file is untouched, the one after it still processed.
	data, err := os.ReadFile(bad)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "---\n---\nbody\n" {
		t.Errorf("failing file was modified: %q", data)
	}
	data, err = os.ReadFile(after)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello: fixed") {
		t.Errorf("file after failure not processed: %q", data)
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.md", sampleDoc)

	var out bytes.Buffer
	f := newFixer(t, "meta.hello = 'fixed'")
	p := New(f, Options{DryRun: true, Stdout: &out})

	res := p.Run([]string{path})
	if res.HasFailures() {
		t.Fatalf("Run() failures = %v", res.Failed)
	}

	want := "---\nhello: fixed\n---\n# Title\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != sampleDoc {
		t.Errorf("dry run modified the file: %q", data)
	}
}

func TestRun_MissingFile(t *testing.T) {
	f := newFixer(t, "")
	p := New(f, Options{})

	res := p.Run([]string{filepath.Join(t.TempDir(), "absent.md")})
	if len(res.Failed) != 1 {
		t.Fatalf("Failed = %v, want one entry", res.Failed)
	}
	if !errors.Is(res.Failed[0].Err, os.ErrNotExist) {
		t.Errorf("Failed err = %v, want ErrNotExist cause", res.Failed[0].Err)
	}
}

func TestRun_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "big.md", sampleDoc)

	f := newFixer(t, "")
	p := New(f, Options{MaxFileSize: 8})

	res := p.Run([]string{path})
	if len(res.Failed) != 1 {
		t.Fatalf("Failed = %v, want one entry", res.Failed)
	}
	if !errors.Is(res.Failed[0].Err, fileutil.ErrFileTooLarge) {
		t.Errorf("Failed err = %v, want ErrFileTooLarge cause", res.Failed[0].Err)
	}
}

func TestRun_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exec.md")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o751); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f := newFixer(t, "meta.hello = 'fixed'")
	p := New(f, Options{})

	if res := p.Run([]string{path}); res.HasFailures() {
		t.Fatalf("Run() failures = %v", res.Failed)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o751 {
		t.Errorf("mode = %v, want 0751", info.Mode().Perm())
	}
}

func TestReporter(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
		result *Result
		want   []string
		not    []string
	}{
		{
			name:   "all succeeded",
			result: &Result{OK: []string{"a.md", "b.md"}},
			want:   []string{"processed 2 files total\n"},
			not:    []string{"successfully", "fail"},
		},
		{
			name: "with failures",
			result: &Result{
				OK:     []string{"a.md"},
				Failed: []Failure{{Path: "b.md", Err: errors.New("bad yaml")}},
			},
			want: []string{
				"processed 2 files total",
				"files successfully",
				"failed to process",
				"b.md: bad yaml",
			},
		},
		{
			name:   "dry run",
			dryRun: true,
			result: &Result{OK: []string{"a.md"}},
			want:   []string{"would process 1 files total\n"},
		},
		{
			name:   "dry run with failures",
			dryRun: true,
			result: &Result{
				Failed: []Failure{{Path: "b.md", Err: errors.New("bad yaml")}},
			},
			want: []string{"would fail to process"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewReporter(&buf, tt.dryRun).Report(tt.result)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("summary %q should contain %q", out, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(out, n) {
					t.Errorf("summary %q should not contain %q", out, n)
				}
			}
		})
	}
}
