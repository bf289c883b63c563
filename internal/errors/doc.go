// Package errors provides error handling conventions for the fmfix CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. It also re-exports the
// cockroachdb/errors constructors (New, Newf, Wrap, Wrapf, Is, As) so the
// rest of the codebase needs a single errors import.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, fmfixerrors.ErrNoScript) {
//	    // handle the missing-script case
//	}
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, bad script, failed documents)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion
// for CLI applications. It supports error unwrapping via [Unwrap] and [As]:
//
//	err := fmfixerrors.NewUserError(fmfixerrors.ErrNoScript, "Pass a script with --eval or --script")
//	var exitErr *fmfixerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
