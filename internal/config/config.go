// Package config provides configuration management for fmfix using Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/pkg/fileutil"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// Format is the default frontmatter dialect: yaml or toml.
	Format string `mapstructure:"format" yaml:"format"`

	// StrictDelimiters makes an unclosed opening delimiter an error instead
	// of treating the whole document as body.
	StrictDelimiters bool `mapstructure:"strict_delimiters" yaml:"strict_delimiters"`

	// MaxFileSize caps how many bytes of a document are read.
	MaxFileSize int64 `mapstructure:"max_file_size" yaml:"max_file_size"`

	// BackupDir is where --backup snapshots are stored.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix("FMFIX")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("format", string(frontmatter.FormatYAML))
	viper.SetDefault("strict_delimiters", false)
	viper.SetDefault("max_file_size", int64(fileutil.DefaultMaxFileSize))
	viper.SetDefault("backup_dir", paths.BackupsDir())
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Version:     1,
		Format:      string(frontmatter.FormatYAML),
		MaxFileSize: fileutil.DefaultMaxFileSize,
		BackupDir:   paths.BackupsDir(),
	}
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// FileUsed returns the path of the configuration file actually loaded, or
// the empty string when the built-in defaults are in effect.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
