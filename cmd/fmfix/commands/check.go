package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/internal/check"
	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/logging"
)

// checkJSONFlag holds the value of the check command's --json flag.
var checkJSONFlag bool

func init() {
	checkCmd.Flags().StringVar(&formatFlag, "format", "",
		"frontmatter dialect: yaml, toml (default from config)")
	checkCmd.Flags().BoolVar(&strictFlag, "strict-delimiters", false,
		"grade an unclosed frontmatter delimiter as an error")
	checkCmd.Flags().BoolVar(&checkJSONFlag, "json", false,
		"output results as JSON")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check FILES...",
	Short: "Check frontmatter without rewriting anything",
	Long: `Check parses the frontmatter of each file and reports what it finds,
without modifying anything.

Findings are graded: an error means rewriting the file would fail, a
warning means the file parses but probably not the way its author
intended, and an info note needs no action. The check applies the same
parsing rules as a rewrite, including the configured dialect and
delimiter strictness.

Exit codes:
  0 - No file has errors
  1 - At least one file has errors`,
	Example: `  # Check every post before running a script over them
  fmfix check posts/*.md

  # Machine-readable report
  fmfix check --json docs/*.md

  # Treat unclosed delimiters as errors
  fmfix check --strict-delimiters notes.md

  See Also: fmfix --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, strict := resolveFormat(cmd)
	if !format.Valid() {
		return errors.NewUserError(
			errors.Newf("invalid format %q", string(format)),
			"Valid formats: yaml, toml")
	}

	chk := check.New(
		check.WithFormat(format),
		check.WithStrictDelimiters(strict),
		check.WithMaxFileSize(cfg.MaxFileSize),
		check.WithLogger(logging.FromContext(cmd.Context())),
	)
	return runCheckWithWriter(cmd.OutOrStdout(), chk, args)
}

func runCheckWithWriter(w io.Writer, chk *check.Checker, args []string) error {
	result := chk.Run(args)

	outFormat := check.FormatText
	if checkJSONFlag {
		outFormat = check.FormatJSON
	}
	if err := check.NewReporter(w, outFormat).Report(result); err != nil {
		return err
	}

	if result.HasErrors() {
		return errors.NewExitError(
			errors.Newf("%d of %d files failed the check", result.ErrorFiles(), len(result.Files)),
			errors.ExitUser)
	}
	return nil
}
