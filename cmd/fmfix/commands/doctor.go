package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/internal/doctor"
	"github.com/fmfix/fmfix/internal/errors"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"create missing directories and re-run the checks")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose installation issues",
	Long: `Run diagnostic checks on the fmfix installation.

Validates the configuration file, checks that the config, script and
backup directories are usable, and verifies that the editor used by
fmfix config edit resolves to an installed binary.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Quick health check
  fmfix doctor

  # Show every check, including passing ones
  fmfix doctor --verbose

  # Create missing directories
  fmfix doctor --fix

  See Also: fmfix init, fmfix config`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.NewUserError(nil, "flags --json, --quiet, and --verbose are mutually exclusive")
	}
	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigCheck(cfg, configLoadErr))
	runner.AddCheck(doctor.NewDirectoriesCheck(resolveBackupDir()))
	runner.AddCheck(doctor.NewScriptLibraryCheck())
	runner.AddCheck(doctor.NewEditorCheck())

	w := cmd.OutOrStdout()

	report := runner.Run()
	if doctorFix {
		report = applyDoctorFixes(w, runner)
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// applyDoctorFixes runs the fixers of every check that has something to fix,
// prints what happened, and re-runs the checks for a fresh report.
func applyDoctorFixes(w io.Writer, runner *doctor.Runner) *doctor.Report {
	for _, c := range runner.Checks() {
		fixer, ok := c.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, fix := range fixer.Fix() {
			if fix.Fixed {
				fmt.Fprintf(w, "fixed: %s (%s)\n", fix.Description, fix.Path)
			} else {
				fmt.Fprintf(w, "not fixed: %s (%s): %v\n", fix.Description, fix.Path, fix.Error)
			}
		}
	}
	return runner.Run()
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report)
}

func outputDoctorJSON(w io.Writer, report *doctor.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(report), "encoding JSON")
}

func outputDoctorText(w io.Writer, report *doctor.Report) error {
	// In normal mode, show only errors and warnings.
	// In verbose mode, show all checks.
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n",
			doctorStatusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func doctorStatusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// errDoctorWarnings is the sentinel behind exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is the sentinel behind exit code 2.
var errDoctorErrors = errors.New("doctor found errors")
