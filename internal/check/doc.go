// Package check inspects document frontmatter without modifying it.
//
// A Checker applies the same parsing rules as a rewrite and reports what it
// finds as graded issues instead of failing the run:
//
//   - [SeverityError]: the block cannot be parsed and a rewrite would fail.
//   - [SeverityWarning]: the document parses, but probably not as intended.
//   - [SeverityInfo]: observations, such as a document with no frontmatter.
//
// # Basic Usage
//
//	chk := check.New(check.WithFormat(frontmatter.FormatYAML))
//	result := chk.Run(paths)
//	if result.HasErrors() {
//		// at least one file would fail a rewrite
//	}
//
// A Reporter renders a Result as a per-file text listing or as JSON.
package check
