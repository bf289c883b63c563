package config

import (
	"errors"
	"fmt"

	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidFormat indicates an unrecognized frontmatter dialect.
	ErrInvalidFormat = errors.New("format must be yaml or toml")

	// ErrNegativeSize indicates a negative max_file_size value.
	ErrNegativeSize = errors.New("max_file_size must not be negative")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	// Version must be >= 1
	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if cfg.Format != "" && !frontmatter.Format(cfg.Format).Valid() {
		errs = append(errs, &FieldError{
			Field: "format",
			Value: cfg.Format,
			Err:   ErrInvalidFormat,
		})
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, &FieldError{
			Field: "max_file_size",
			Value: fmt.Sprint(cfg.MaxFileSize),
			Err:   ErrNegativeSize,
		})
	}

	return errs
}

// FieldError represents a validation error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
