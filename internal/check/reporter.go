package check

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fmfix/fmfix/internal/errors"
)

// Format specifies the output format for check reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes check results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the check result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

// reportJSON writes the result as JSON.
func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

// reportText writes one line per file, its findings indented underneath, and
// a closing summary.
func (r *Reporter) reportText(result *Result) error {
	for i := range result.Files {
		r.printFile(&result.Files[i])
	}

	problems := result.Problems()
	fmt.Fprintf(r.out, "\nchecked %d files: %d clean, %d with problems\n",
		len(result.Files), len(result.Files)-problems, problems)
	return nil
}

func (r *Reporter) printFile(file *FileResult) {
	mark := color.GreenString("✓")
	switch {
	case file.HasErrors():
		mark = color.RedString("✗")
	case file.HasWarnings():
		mark = color.YellowString("!")
	}
	fmt.Fprintf(r.out, "%s %s\n", mark, file.Path)

	for _, issue := range file.Issues {
		r.printIssue(issue)
	}
}

func (r *Reporter) printIssue(i Issue) {
	printer := color.New(severityColor(i.Severity)).SprintFunc()

	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(printer(i.Severity.String()))
	sb.WriteString(": ")
	sb.WriteString(i.Message)

	if i.Detail != "" {
		sb.WriteString(" ")
		sb.WriteString(color.New(color.FgHiBlack).Sprintf("(%s)", i.Detail))
	}

	fmt.Fprintln(r.out, sb.String())
}

func severityColor(s Severity) color.Attribute {
	switch s {
	case SeverityError:
		return color.FgRed
	case SeverityWarning:
		return color.FgYellow
	default:
		return color.FgCyan
	}
}
