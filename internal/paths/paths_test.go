package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmfix/fmfix/internal/errors"
)

func TestHome(t *testing.T) {
	got := Home()
	want, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("os.UserHomeDir() failed: %v", err)
	}
	if got != want {
		t.Errorf("Home() = %q, want %q", got, want)
	}
}

func TestResolveHome(t *testing.T) {
	got, err := ResolveHome()
	want, _ := os.UserHomeDir()

	if err != nil {
		// This might happen in some restricted environments,
		// but normally should succeed.
		if !errors.Is(err, ErrHomeDirNotFound) {
			t.Errorf("unexpected error type: %v", err)
		}
	} else if got != want {
		t.Errorf("ResolveHome() = %q, want %q", got, want)
	}
}

func TestConfigHome(t *testing.T) {
	got := ConfigHome()
	if got == "" {
		t.Error("ConfigHome() returned empty string")
	}
	// Verify it's an absolute path
	if !filepath.IsAbs(got) {
		t.Errorf("ConfigHome() = %q, want absolute path", got)
	}
}

func TestDataHome(t *testing.T) {
	got := DataHome()
	if got == "" {
		t.Error("DataHome() returned empty string")
	}
	if !filepath.IsAbs(got) {
		t.Errorf("DataHome() = %q, want absolute path", got)
	}
}

func TestConfigDir(t *testing.T) {
	got := ConfigDir()
	if got == "" {
		t.Error("ConfigDir() returned empty string")
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ConfigDir() = %q, want absolute path", got)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("ConfigDir() = %q, want path ending with %q", got, AppName)
	}
	if !strings.HasPrefix(got, ConfigHome()) {
		t.Errorf("ConfigDir() = %q, want path under ConfigHome %q", got, ConfigHome())
	}
}

func TestScriptsDir(t *testing.T) {
	got := ScriptsDir()
	if got == "" {
		t.Error("ScriptsDir() returned empty string")
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ScriptsDir() = %q, want absolute path", got)
	}

	wantSuffix := filepath.Join(AppName, "scripts")
	if !strings.HasSuffix(got, wantSuffix) {
		t.Errorf("ScriptsDir() = %q, want path ending with %q", got, wantSuffix)
	}

	if !strings.HasPrefix(got, DataHome()) {
		t.Errorf("ScriptsDir() = %q, want path under DataHome %q", got, DataHome())
	}
}

func TestEnsureDir(t *testing.T) {
	t.Run("creates directory with default perm", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		if err := EnsureDir(dir, 0); err != nil {
			t.Fatalf("EnsureDir() error = %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if !info.IsDir() {
			t.Error("EnsureDir() did not create a directory")
		}
		if perm := info.Mode().Perm(); perm != DefaultDirPerm {
			t.Errorf("permissions = %o, want %o", perm, DefaultDirPerm)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		if err := EnsureDir(dir, 0o755); err != nil {
			t.Errorf("EnsureDir() on existing dir error = %v", err)
		}
	})
}
