// Package config provides configuration management for the fmfix CLI.
//
// This package handles loading and validating the tool's own configuration
// file. Command-line flags take precedence over config values, which take
// precedence over the built-in defaults.
//
// # Configuration File
//
// The default configuration file location is ~/.config/fmfix/config.yaml
// (per the XDG base directory rules); a config.yaml in the working directory
// is preferred when present. The file uses YAML format:
//
//	version: 1
//	format: yaml            # default frontmatter dialect: yaml or toml
//	strict_delimiters: false # error on an unclosed opening delimiter
//	max_file_size: 1048576   # document read limit in bytes
//
// Every key can also be set via the environment as FMFIX_FORMAT,
// FMFIX_STRICT_DELIMITERS and so on.
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// A missing file is not an error when no explicit path was given; the
// defaults apply.
//
// # Validation
//
// Use [Validate] to check a loaded configuration:
//
//	errs := config.Validate(cfg)
//	for _, e := range errs {
//	    fmt.Println(e)
//	}
package config
