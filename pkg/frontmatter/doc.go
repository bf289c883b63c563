// Package frontmatter splits documents into a metadata block and a body,
// decodes the block into an order-preserving Value tree, and reassembles
// documents after the metadata has been edited.
//
// A document carries frontmatter only when it begins with the delimiter line
// ("---\n" for YAML, "+++\n" for TOML). The block runs to the next occurrence
// of the delimiter sequence; everything after that is the body, byte for
// byte. Documents that never close the block are treated as having no
// frontmatter at all.
//
// # Basic Usage
//
//	meta, body, err := frontmatter.FormatYAML.Parse(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// edit meta...
//	out, err := frontmatter.FormatYAML.Render(meta, body)
//
// # The Value Tree
//
// Metadata decodes into [Value], a null/bool/number/string/sequence/mapping
// tree. Mappings remember insertion order, so a document parsed and rendered
// without edits keeps its keys where the author put them. All numbers are
// float64.
//
// # Error Handling
//
// Decode failures surface as [*DecodeError] and encode failures as
// [*EncodeError]; both unwrap to the underlying cause. A present but empty
// block wraps [ErrEmptyBlock]:
//
//	_, err := frontmatter.FormatYAML.Decode("")
//	if errors.Is(err, frontmatter.ErrEmptyBlock) {
//		// delimiters with nothing between them
//	}
package frontmatter
