package check

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/pkg/fileutil"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// Severity grades a finding.
type Severity int

const (
	// SeverityError marks a document whose rewrite would fail.
	SeverityError Severity = iota
	// SeverityWarning marks a document that parses, but probably not the way
	// its author intended.
	SeverityWarning
	// SeverityInfo marks an observation that needs no action.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", name)
	}
	return nil
}

// Issue is a single finding about one document.
type Issue struct {
	// Severity grades the finding.
	Severity Severity `json:"severity"`
	// Message describes the finding.
	Message string `json:"message"`
	// Detail carries the underlying parser error, when there is one.
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(i.Message)
	if i.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", i.Detail)
	}
	return sb.String()
}

// FileResult collects the findings for one file.
type FileResult struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues,omitempty"`
}

// HasErrors reports whether any finding has SeverityError.
func (r *FileResult) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any finding has SeverityWarning.
func (r *FileResult) HasWarnings() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Clean reports whether the file has neither errors nor warnings.
func (r *FileResult) Clean() bool {
	return !r.HasErrors() && !r.HasWarnings()
}

// Result aggregates the findings of a run, one entry per file in input order.
type Result struct {
	Files []FileResult `json:"files"`
}

// HasErrors reports whether any file has an error-severity finding.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	for i := range r.Files {
		if r.Files[i].HasErrors() {
			return true
		}
	}
	return false
}

// Problems returns the number of files with errors or warnings.
func (r *Result) Problems() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Files {
		if !r.Files[i].Clean() {
			n++
		}
	}
	return n
}

// ErrorFiles returns the number of files with at least one error.
func (r *Result) ErrorFiles() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Files {
		if r.Files[i].HasErrors() {
			n++
		}
	}
	return n
}

// Checker inspects document frontmatter without modifying anything. It
// applies the same parsing rules as a rewrite, so an error-severity finding
// means the rewrite would fail on that document.
type Checker struct {
	format      frontmatter.Format
	strict      bool
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithFormat selects the frontmatter dialect. The default is YAML.
func WithFormat(f frontmatter.Format) Option {
	return func(c *Checker) {
		c.format = f
	}
}

// WithStrictDelimiters grades an unclosed metadata block as an error instead
// of a warning, matching a rewrite run with the same setting.
func WithStrictDelimiters(strict bool) Option {
	return func(c *Checker) {
		c.strict = strict
	}
}

// WithMaxFileSize caps how large a checked file may be, in bytes. Zero
// applies fileutil.DefaultMaxFileSize.
func WithMaxFileSize(limit int64) Option {
	return func(c *Checker) {
		c.maxFileSize = limit
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New returns a Checker with the given options applied.
func New(opts ...Option) *Checker {
	c := &Checker{
		format: frontmatter.FormatYAML,
		logger: logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check inspects a single document and returns its findings. A document that
// parses cleanly into a metadata mapping returns none.
func (c *Checker) Check(doc string) []Issue {
	rule := c.format.Delimiter()
	if crlf := strings.TrimSuffix(rule, "\n") + "\r\n"; strings.HasPrefix(doc, crlf) {
		return []Issue{{
			Severity: SeverityWarning,
			Message:  "delimiter line ends in a carriage return",
			Detail:   "frontmatter is recognized with LF line endings only",
		}}
	}

	if c.format.Unclosed(doc) {
		if c.strict {
			return []Issue{{
				Severity: SeverityError,
				Message:  "unclosed metadata block",
			}}
		}
		return []Issue{{
			Severity: SeverityWarning,
			Message:  "unclosed metadata block",
			Detail:   "the whole document is treated as body text",
		}}
	}

	meta, _, err := c.format.Parse(doc)
	if err != nil {
		if errors.Is(err, frontmatter.ErrEmptyBlock) {
			return []Issue{{
				Severity: SeverityError,
				Message:  "empty metadata block",
			}}
		}
		detail := err.Error()
		var decodeErr *frontmatter.DecodeError
		if errors.As(err, &decodeErr) {
			detail = decodeErr.Err.Error()
		}
		return []Issue{{
			Severity: SeverityError,
			Message:  "malformed metadata block",
			Detail:   detail,
		}}
	}

	if meta == nil {
		return []Issue{{
			Severity: SeverityInfo,
			Message:  "no frontmatter block",
		}}
	}

	if meta.Kind != frontmatter.KindMapping {
		return []Issue{{
			Severity: SeverityWarning,
			Message:  "metadata is not a mapping",
			Detail:   fmt.Sprintf("got a %s; scripts usually expect key/value metadata", meta.Kind),
		}}
	}

	return nil
}

// CheckFile reads one file and inspects its contents. Read failures become
// error-severity findings so a batch report covers them alongside parse
// problems.
func (c *Checker) CheckFile(path string) FileResult {
	res := FileResult{Path: path}
	data, err := fileutil.ReadFileWithLimit(path, c.maxFileSize)
	if err != nil {
		res.Issues = append(res.Issues, Issue{
			Severity: SeverityError,
			Message:  "cannot read file",
			Detail:   err.Error(),
		})
		return res
	}
	res.Issues = c.Check(string(data))
	return res
}

// Run checks every path in order and aggregates the findings.
func (c *Checker) Run(paths []string) *Result {
	res := &Result{Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		fr := c.CheckFile(path)
		c.logger.Debug("checked file", "path", path, "issues", len(fr.Issues))
		res.Files = append(res.Files, fr)
	}
	return res
}
