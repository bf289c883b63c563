// Package fixer runs user Lua scripts against documents to rewrite their
// frontmatter.
//
// A Fixer pairs one Lua state with either a compiled script or an
// interactive read-eval-print loop. For each document it decodes the
// frontmatter into the meta global, binds the body to the content global,
// runs the script, then reads meta back and reassembles the document from
// whatever the script left there. Setting meta to nil strips the
// frontmatter; assigning the null global to a field keeps an explicit null
// in the output, which plain nil cannot express because assigning nil
// removes a table entry.
//
// The Lua state lives for the Fixer's lifetime, so globals a script defines
// survive from one document to the next and scripts can accumulate state
// across a batch. Only meta and content are rebound per document. A Fixer
// is not safe for concurrent use.
package fixer
