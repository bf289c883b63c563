package errors

import "github.com/cockroachdb/errors"

// Re-exports so callers can use this package as a drop-in for both the
// standard library and cockroachdb/errors without a second import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Errorf = errors.Errorf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
