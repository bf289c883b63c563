package processor

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter writes a run summary. The summary goes to stderr by convention so
// that dry-run document output on stdout stays clean enough to pipe.
type Reporter struct {
	out    io.Writer
	dryRun bool
}

// NewReporter creates a Reporter. dryRun switches the wording from what
// happened to what would happen.
func NewReporter(out io.Writer, dryRun bool) *Reporter {
	return &Reporter{out: out, dryRun: dryRun}
}

// Report writes the summary for a run: the total, and when anything failed,
// the success and failure counts followed by each failing path with its
// error.
func (r *Reporter) Report(result *Result) {
	if result == nil {
		return
	}

	verb, failVerb := "processed", "failed to process"
	if r.dryRun {
		verb, failVerb = "would process", "would fail to process"
	}

	fmt.Fprintf(r.out, "%s %d files total\n", verb, result.Total())
	if !result.HasFailures() {
		return
	}

	fmt.Fprintf(r.out, "%s %s files successfully\n", verb, color.GreenString("%d", len(result.OK)))
	fmt.Fprintf(r.out, "%s %s files\n", failVerb, color.RedString("%d", len(result.Failed)))
	for _, f := range result.Failed {
		fmt.Fprintf(r.out, "  %s: %v\n", color.RedString(f.Path), f.Err)
	}
}
