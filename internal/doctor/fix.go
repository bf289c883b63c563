package doctor

// Fixer is an optional interface that checks can implement to support
// auto-remediation. Checks that implement Fixer can fix issues they detect
// when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run() to check if there are issues that can be fixed.
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Returns a slice of FixResult indicating what was fixed or why it couldn't be.
	// Must be called after Run().
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool

	// Description explains what was fixed or why it couldn't be fixed.
	Description string

	// Error contains the error if the fix failed.
	Error error
}
