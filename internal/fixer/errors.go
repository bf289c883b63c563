package fixer

// CompileError reports a script that failed to parse. Name is the chunk name
// the script was loaded under, typically its file path or "eval".
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string { return "compiling " + e.Name + ": " + e.Err.Error() }

func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError reports a script that raised an error while running against a
// document. The document is left unmodified.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string { return "running script: " + e.Err.Error() }

func (e *RuntimeError) Unwrap() error { return e.Err }

// ConversionError reports a meta global that could not be turned back into
// frontmatter after the script ran, such as a table holding a function.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string { return "converting meta to frontmatter: " + e.Err.Error() }

func (e *ConversionError) Unwrap() error { return e.Err }
