package frontmatter

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Format selects a frontmatter dialect: the delimiter line and the grammar of
// the block between the delimiters.
type Format string

const (
	// FormatYAML is the default dialect, "---" delimiters around a YAML
	// document.
	FormatYAML Format = "yaml"
	// FormatTOML is the Hugo-style dialect, "+++" delimiters around a TOML
	// document.
	FormatTOML Format = "toml"
)

// ErrEmptyBlock is the cause reported when a document opens and closes a
// metadata block with nothing between the delimiters.
var ErrEmptyBlock = errors.New("empty metadata block")

// ErrUnclosed is the cause reported by callers that treat an opening
// delimiter with no closing delimiter as malformed rather than as plain body.
var ErrUnclosed = errors.New("unclosed metadata block")

// DecodeError wraps a failure to interpret the text between the delimiters.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding frontmatter: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure to serialize metadata back into a block, such
// as a value the dialect has no representation for.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "encoding frontmatter: " + e.Err.Error() }

func (e *EncodeError) Unwrap() error { return e.Err }

// Valid reports whether f names a known dialect.
func (f Format) Valid() bool { return f == FormatYAML || f == FormatTOML }

// Delimiter returns the dialect's literal delimiter line, trailing newline
// included.
func (f Format) Delimiter() string {
	if f == FormatTOML {
		return "+++\n"
	}
	return "---\n"
}

// Split divides a document into its metadata block and body.
//
// A document carries frontmatter only when its very first bytes are the
// delimiter line. The block then runs to the next occurrence of the delimiter
// sequence and excludes both delimiters; it is empty when they are adjacent.
// A document that opens a block without ever closing it, or that does not
// open one at all, is returned whole as the body with ok false.
func (f Format) Split(doc string) (block, body string, ok bool) {
	rule := f.Delimiter()
	if !strings.HasPrefix(doc, rule) {
		return "", doc, false
	}
	rest := doc[len(rule):]
	end := strings.Index(rest, rule)
	if end < 0 {
		return "", doc, false
	}
	return rest[:end], rest[end+len(rule):], true
}

// Unclosed reports whether doc opens a metadata block that never closes.
// Split already treats such documents as all body; this exists for callers
// that reject them instead.
func (f Format) Unclosed(doc string) bool {
	rule := f.Delimiter()
	if !strings.HasPrefix(doc, rule) {
		return false
	}
	return !strings.Contains(doc[len(rule):], rule)
}

// Decode deserializes a metadata block into a Value. An empty block is a
// DecodeError wrapping ErrEmptyBlock: the delimiters announce metadata that
// is not there.
func (f Format) Decode(block string) (*Value, error) {
	if f == FormatTOML {
		return decodeTOML(block)
	}
	var v Value
	dec := yaml.NewDecoder(strings.NewReader(block))
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Err: ErrEmptyBlock}
		}
		return nil, &DecodeError{Err: err}
	}
	return &v, nil
}

// Encode serializes a metadata value to the dialect's block text, trailing
// newline included. YAML keeps mapping order; TOML sorts keys.
func (f Format) Encode(v *Value) ([]byte, error) {
	if f == FormatTOML {
		return encodeTOML(v)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return buf.Bytes(), nil
}

// Parse splits doc and decodes its metadata block in one step. A document
// without frontmatter returns (nil, doc, nil); a present but malformed block
// returns the decode error alongside the body.
func (f Format) Parse(doc string) (*Value, string, error) {
	block, body, ok := f.Split(doc)
	if !ok {
		return nil, body, nil
	}
	meta, err := f.Decode(block)
	if err != nil {
		return nil, body, err
	}
	return meta, body, nil
}

// Write reassembles a document: delimiter, encoded metadata, delimiter, then
// the body verbatim. A nil metadata value writes the body alone, with no
// delimiters.
func (f Format) Write(w io.Writer, meta *Value, body string) error {
	if meta != nil {
		block, err := f.Encode(meta)
		if err != nil {
			return err
		}
		rule := f.Delimiter()
		if _, err := io.WriteString(w, rule); err != nil {
			return errors.Wrap(err, "writing frontmatter")
		}
		if _, err := w.Write(block); err != nil {
			return errors.Wrap(err, "writing frontmatter")
		}
		if _, err := io.WriteString(w, rule); err != nil {
			return errors.Wrap(err, "writing frontmatter")
		}
	}
	if _, err := io.WriteString(w, body); err != nil {
		return errors.Wrap(err, "writing document body")
	}
	return nil
}

// Render is Write into a byte slice.
func (f Format) Render(meta *Value, body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf, meta, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
