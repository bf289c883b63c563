// Package commands implements the CLI commands for fmfix.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/cmd"
	"github.com/fmfix/fmfix/internal/backup"
	"github.com/fmfix/fmfix/internal/config"
	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/fixer"
	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/internal/processor"
	"github.com/fmfix/fmfix/internal/scripts"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// evalFlag holds the value of the -e/--eval flag.
var evalFlag string

// scriptFlag holds the value of the -f/--script flag.
var scriptFlag string

// replFlag holds the value of the -r/--repl flag.
var replFlag bool

// dryRunFlag holds the value of the -n/--dry-run flag.
var dryRunFlag bool

// backupFlag holds the value of the -b/--backup flag.
var backupFlag bool

// formatFlag holds the value of the --format flag.
var formatFlag string

// strictFlag holds the value of the --strict-delimiters flag.
var strictFlag bool

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// cfg holds the configuration loaded by initConfig.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVarP(&evalFlag, "eval", "e", "",
		"inline Lua script to run against each file")
	rootCmd.Flags().StringVarP(&scriptFlag, "script", "f", "",
		"Lua script file to run against each file")
	rootCmd.Flags().BoolVarP(&replFlag, "repl", "r", false,
		"read script lines interactively for each file")
	rootCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false,
		"print rewritten documents to stdout instead of writing files")
	rootCmd.Flags().BoolVarP(&backupFlag, "backup", "b", false,
		"snapshot the files before rewriting them (see fmfix backup)")
	rootCmd.Flags().StringVar(&formatFlag, "format", "",
		"frontmatter dialect: yaml, toml (default from config)")
	rootCmd.Flags().BoolVar(&strictFlag, "strict-delimiters", false,
		"treat an unclosed frontmatter delimiter as an error")

	// Add persistent flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	// Add version flag
	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("fmfix version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	cfg, configLoadErr = config.Load("")
	if cfg == nil {
		cfg = config.Default()
	}
}

var rootCmd = &cobra.Command{
	Use:   "fmfix [flags] FILES...",
	Short: "Fix document frontmatter with Lua scripts",
	Long: `fmfix rewrites the frontmatter of documents by running a Lua script
against each file.

The script sees two globals per document: meta, the decoded frontmatter
(nil when the document has none), and content, the document body as a
read-only string. Whatever the script leaves in meta is written back as
the new frontmatter; setting meta to nil removes the block entirely.
Assign the null global to keep an explicit null in the output, and call
yaml_dump(value) to inspect any value as YAML on stdout.

Scripts come inline with --eval, from a file with --script, or from an
interactive session with --repl. One Lua state is shared across all
files, so scripts can carry state from one document to the next. Files
are rewritten in place; use --dry-run to preview the results on stdout
or --backup to snapshot the originals first (see fmfix backup).`,
	Example: `  # Add a field to every post
  fmfix -e 'meta.draft = false' posts/*.md

  # Preview without writing anything
  fmfix -n -e 'meta.title = string.match(content, "# ([^%c]*)")' README.md

  # Run a script file
  fmfix -f fix_tags.lua docs/*.md

  # Explore a document interactively
  fmfix -r notes.md

  See Also: fmfix init, fmfix config`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	RunE: runRoot,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("FMFIX_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig surfaces configuration errors before any command runs. The
// commands that exist to create or repair the configuration are exempt so a
// broken file can still be fixed.
func checkConfig(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "init", "edit", "restore", "doctor":
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewConfigError(errors.Join(errs...))
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.NewUserError(errors.ErrNoInput, "Pass one or more files to fix")
	}

	format, strict := resolveFormat(cmd)
	if !format.Valid() {
		return errors.NewUserError(
			errors.Newf("invalid format %q", string(format)),
			"Valid formats: yaml, toml")
	}

	source, name, interactive, err := scriptSource()
	if err != nil {
		return err
	}

	logger := logging.FromContext(cmd.Context())
	opts := []fixer.Option{
		fixer.WithFormat(format),
		fixer.WithStrictDelimiters(strict),
		fixer.WithLogger(logger),
		fixer.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}

	var fix *fixer.Fixer
	if interactive {
		fix = fixer.NewInteractive(opts...)
	} else {
		fix, err = fixer.New(source, name, opts...)
		if err != nil {
			return errors.NewExitError(err, errors.ExitUser)
		}
	}
	defer fix.Close()

	if backupFlag && !dryRunFlag {
		if err := backUpInputs(cmd, args, logger); err != nil {
			return err
		}
	}

	proc := processor.New(fix, processor.Options{
		DryRun:      dryRunFlag,
		MaxFileSize: cfg.MaxFileSize,
		Logger:      logger,
		Stdout:      cmd.OutOrStdout(),
	})
	result := proc.Run(args)

	processor.NewReporter(cmd.ErrOrStderr(), dryRunFlag).Report(result)
	if result.HasFailures() {
		return errors.NewExitError(
			errors.Newf("%d of %d files failed", len(result.Failed), result.Total()),
			errors.ExitUser)
	}
	return nil
}

// backUpInputs snapshots the input files before any of them is rewritten.
// A run that cannot take its backup does not get to modify anything.
func backUpInputs(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	mgr := backupManager()

	manifest, err := mgr.Create(args)
	if err != nil {
		if errors.Is(err, backup.ErrNothingToBackUp) {
			logger.Warn("no existing files to back up")
			return nil
		}
		return errors.NewExitError(errors.Wrap(err, "creating backup"), errors.ExitSystem)
	}

	logger.Info("created backup", "id", manifest.ID, "files", len(manifest.Files))
	fmt.Fprintf(cmd.ErrOrStderr(), "Created backup %s (%d files)\n",
		manifest.ID, len(manifest.Files))

	if err := mgr.Prune(mgr.RetentionCount()); err != nil {
		logger.Warn("pruning old backups failed", "error", err)
	}
	return nil
}

// resolveFormat merges the configured dialect settings with their flag
// overrides.
func resolveFormat(cmd *cobra.Command) (frontmatter.Format, bool) {
	format := frontmatter.Format(cfg.Format)
	if cmd.Flags().Changed("format") {
		format = frontmatter.Format(formatFlag)
	}
	strict := cfg.StrictDelimiters
	if cmd.Flags().Changed("strict-delimiters") {
		strict = strictFlag
	}
	return format, strict
}

// scriptSource resolves where the script comes from. Exactly one of --eval,
// --script and --repl must be given.
func scriptSource() (source, name string, interactive bool, err error) {
	set := 0
	for _, on := range []bool{evalFlag != "", scriptFlag != "", replFlag} {
		if on {
			set++
		}
	}
	switch {
	case set == 0:
		return "", "", false, errors.NewUserError(errors.ErrNoScript,
			"Pass -e 'lua code', -f script.lua or -r")
	case set > 1:
		return "", "", false, errors.NewUserError(errors.ErrScriptConflict,
			"Pass only one of -e, -f and -r")
	case replFlag:
		return "", "", true, nil
	case evalFlag != "":
		return evalFlag, "eval", false, nil
	default:
		source, err := loadScript(scriptFlag)
		if err != nil {
			return "", "", false, err
		}
		return source, scriptFlag, false, nil
	}
}

// loadScript reads a script file. A bare name that does not exist relative
// to the working directory is also looked up in the user script library.
func loadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}
	if os.IsNotExist(err) && !strings.ContainsRune(path, os.PathSeparator) {
		if libPath, ok := scripts.DefaultLibrary().Resolve(path); ok {
			if data, libErr := os.ReadFile(libPath); libErr == nil {
				return string(data), nil
			}
		}
	}
	return "", errors.Wrapf(err, "reading script file %s", path)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
