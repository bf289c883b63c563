package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fmfix/fmfix/internal/paths"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// whatever fn printed.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), fnErr
}

func TestConfigGet(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		setupValue func()
		wantOutput string
	}{
		{
			name: "unset key prints not set",
			key:  "nonexistent_key",
			setupValue: func() {
				// Don't set anything
			},
			wantOutput: "not set\n",
		},
		{
			name: "integer value prints the value",
			key:  "version",
			setupValue: func() {
				viper.Set("version", 1)
			},
			wantOutput: "1\n",
		},
		{
			name: "string value prints the value",
			key:  "format",
			setupValue: func() {
				viper.Set("format", "toml")
			},
			wantOutput: "toml\n",
		},
		{
			name: "boolean value prints the value",
			key:  "strict_delimiters",
			setupValue: func() {
				viper.Set("strict_delimiters", true)
			},
			wantOutput: "true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setupValue()

			got, err := captureStdout(t, func() error {
				return runConfigGet(nil, []string{tt.key})
			})

			if err != nil {
				t.Errorf("runConfigGet() error = %v", err)
				return
			}
			if got != tt.wantOutput {
				t.Errorf("runConfigGet(%q) output = %q, want %q", tt.key, got, tt.wantOutput)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		wantErr     bool
		errContains string
		verify      func(t *testing.T)
	}{
		{
			name:  "format accepts yaml",
			key:   "format",
			value: "yaml",
			verify: func(t *testing.T) {
				t.Helper()
				if got := viper.GetString("format"); got != "yaml" {
					t.Errorf("format = %q, want %q", got, "yaml")
				}
			},
		},
		{
			name:  "format accepts toml",
			key:   "format",
			value: "toml",
			verify: func(t *testing.T) {
				t.Helper()
				if got := viper.GetString("format"); got != "toml" {
					t.Errorf("format = %q, want %q", got, "toml")
				}
			},
		},
		{
			name:        "format rejects unknown dialect",
			key:         "format",
			value:       "markdown",
			wantErr:     true,
			errContains: "invalid format",
		},
		{
			name:  "strict_delimiters accepts a boolean",
			key:   "strict_delimiters",
			value: "true",
			verify: func(t *testing.T) {
				t.Helper()
				if !viper.GetBool("strict_delimiters") {
					t.Error("strict_delimiters = false, want true")
				}
			},
		},
		{
			name:        "strict_delimiters rejects non-boolean",
			key:         "strict_delimiters",
			value:       "banana",
			wantErr:     true,
			errContains: "must be a boolean",
		},
		{
			name:  "max_file_size accepts an integer",
			key:   "max_file_size",
			value: "2048",
			verify: func(t *testing.T) {
				t.Helper()
				if got := viper.GetInt64("max_file_size"); got != 2048 {
					t.Errorf("max_file_size = %d, want 2048", got)
				}
			},
		},
		{
			name:        "max_file_size rejects non-integer",
			key:         "max_file_size",
			value:       "huge",
			wantErr:     true,
			errContains: "must be an integer",
		},
		{
			name:  "version accepts an integer",
			key:   "version",
			value: "2",
			verify: func(t *testing.T) {
				t.Helper()
				if got := viper.GetInt("version"); got != 2 {
					t.Errorf("version = %d, want 2", got)
				}
			},
		},
		{
			name:        "unknown key lists valid keys",
			key:         "colour",
			value:       "red",
			wantErr:     true,
			errContains: "unknown key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()

			_, err := captureStdout(t, func() error {
				return runConfigSet(nil, []string{tt.key, tt.value})
			})

			if tt.wantErr {
				if err == nil {
					t.Errorf("runConfigSet() expected error, got nil")
					return
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("runConfigSet() error = %q, want error containing %q",
						err.Error(), tt.errContains)
				}
				return
			}

			// Validation passed; the write itself may fail because writeConfig
			// targets the real XDG config directory, which tests cannot rely on.
			if err != nil && !strings.Contains(err.Error(), "creating config directory") &&
				!strings.Contains(err.Error(), "writing config file") {
				t.Errorf("runConfigSet() unexpected validation error = %v", err)
				return
			}

			if tt.verify != nil {
				tt.verify(t)
			}
		})
	}
}

func TestConfigList(t *testing.T) {
	t.Run("outputs valid YAML", func(t *testing.T) {
		viper.Reset()
		viper.Set("version", 1)
		viper.Set("format", "yaml")
		viper.Set("strict_delimiters", false)
		viper.Set("max_file_size", int64(1024))

		output, err := captureStdout(t, func() error {
			return runConfigList(nil, nil)
		})
		if err != nil {
			t.Fatalf("runConfigList() error = %v", err)
		}

		var parsed map[string]any
		if err := yaml.Unmarshal([]byte(output), &parsed); err != nil {
			t.Fatalf("runConfigList() output is not valid YAML: %v\nOutput: %s", err, output)
		}

		for _, key := range configKeys {
			if _, ok := parsed[key]; !ok {
				t.Errorf("runConfigList() output missing %q key", key)
			}
		}
	})

	t.Run("reflects current config values", func(t *testing.T) {
		viper.Reset()
		viper.Set("version", 42)
		viper.Set("format", "toml")
		viper.Set("strict_delimiters", true)
		viper.Set("max_file_size", int64(99))

		output, err := captureStdout(t, func() error {
			return runConfigList(nil, nil)
		})
		if err != nil {
			t.Fatalf("runConfigList() error = %v", err)
		}

		var parsed map[string]any
		if err := yaml.Unmarshal([]byte(output), &parsed); err != nil {
			t.Fatalf("YAML parse error: %v", err)
		}

		if v, ok := parsed["version"].(int); !ok || v != 42 {
			t.Errorf("version = %v, want 42", parsed["version"])
		}
		if f, ok := parsed["format"].(string); !ok || f != "toml" {
			t.Errorf("format = %v, want toml", parsed["format"])
		}
		if s, ok := parsed["strict_delimiters"].(bool); !ok || !s {
			t.Errorf("strict_delimiters = %v, want true", parsed["strict_delimiters"])
		}
	})

	t.Run("defaults to zero values when nothing is set", func(t *testing.T) {
		viper.Reset()

		output, err := captureStdout(t, func() error {
			return runConfigList(nil, nil)
		})
		if err != nil {
			t.Fatalf("runConfigList() error = %v", err)
		}

		var parsed map[string]any
		if err := yaml.Unmarshal([]byte(output), &parsed); err != nil {
			t.Errorf("runConfigList() output is not valid YAML: %v", err)
		}
	})
}

func TestConfigEdit_MissingFile(t *testing.T) {
	configPath := filepath.Join(paths.ConfigDir(), "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		t.Skip("config file exists, cannot exercise the missing-file error")
	}

	err := runConfigEdit(nil, nil)
	if err == nil {
		t.Fatal("runConfigEdit() expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "fmfix init") {
		t.Errorf("runConfigEdit() error = %q, want mention of 'fmfix init'", err.Error())
	}
}
