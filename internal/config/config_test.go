package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestInit(t *testing.T) {
	// Reset viper state
	viper.Reset()

	Init()

	// Check defaults are set
	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if viper.GetString("format") != "yaml" {
		t.Errorf("expected format default yaml, got %q", viper.GetString("format"))
	}
	if viper.GetBool("strict_delimiters") {
		t.Error("expected strict_delimiters default false")
	}
	if viper.GetInt64("max_file_size") <= 0 {
		t.Errorf("expected positive max_file_size default, got %d", viper.GetInt64("max_file_size"))
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	viper.Reset()

	// Run from an empty directory to avoid loading a stray config.yaml
	t.Chdir(t.TempDir())

	Init()

	// Load with no config file should not error
	cfg, err := Load("")
	if err != nil {
		t.Errorf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config to be returned")
	}
	if cfg.Version != 1 {
		t.Errorf("expected default version 1, got %d", cfg.Version)
	}
	if cfg.Format != "yaml" {
		t.Errorf("expected default format yaml, got %q", cfg.Format)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()

	// Create temp config file
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("format: toml\nstrict_delimiters: true\nmax_file_size: 2048\n")
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Format != "toml" {
		t.Errorf("format = %q, want toml", cfg.Format)
	}
	if !cfg.StrictDelimiters {
		t.Error("strict_delimiters = false, want true")
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("max_file_size = %d, want 2048", cfg.MaxFileSize)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	// Load with non-existent config file should error
	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("FMFIX_FORMAT", "toml")

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Format != "toml" {
		t.Errorf("format = %q, want toml from FMFIX_FORMAT", cfg.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "valid defaults",
			cfg:     Default(),
			wantErr: nil,
		},
		{
			name:    "version too low",
			cfg:     &Config{Version: 0, Format: "yaml"},
			wantErr: ErrVersionTooLow,
		},
		{
			name:    "bad format",
			cfg:     &Config{Version: 1, Format: "ini"},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "negative size",
			cfg:     &Config{Version: 1, Format: "yaml", MaxFileSize: -1},
			wantErr: ErrNegativeSize,
		},
		{
			name:    "empty format falls back to default",
			cfg:     &Config{Version: 1},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.cfg)
			if tt.wantErr == nil {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want an error matching %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	errs := Validate(nil)
	if len(errs) == 0 {
		t.Error("Validate(nil) should report an error")
	}
}

func TestFieldError(t *testing.T) {
	e := &FieldError{Field: "format", Value: "ini", Err: ErrInvalidFormat}
	want := "format: format must be yaml or toml: ini"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	if !errors.Is(e, ErrInvalidFormat) {
		t.Error("FieldError should unwrap to its sentinel")
	}
}
