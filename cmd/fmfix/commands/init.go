package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/internal/config"
	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/pkg/fileutil"
)

var (
	initYes   bool
	initForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Non-interactive mode, accept all defaults")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fmfix configuration",
	Long: `Bootstrap the fmfix configuration and script library.

Creates ~/.config/fmfix/config.yaml with default values and the script
library directory where --script looks up bare script names.`,
	Example: `  # Initialize with interactive prompts
  fmfix init

  # Initialize non-interactively, accepting defaults
  fmfix init --yes

  # Force overwrite existing configuration
  fmfix init --force

  See Also: fmfix config`,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	configPath := filepath.Join(paths.ConfigDir(), "config.yaml")

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("Configuration already exists at %s\n", configPath)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	// Interactive confirmation
	if !initYes {
		fmt.Println("This will create:")
		fmt.Printf("  %s\n", configPath)
		fmt.Printf("  %s%c\n", paths.ScriptsDir(), os.PathSeparator)
		fmt.Println()

		if !confirm("Proceed?") {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := paths.EnsureDir(paths.ConfigDir(), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := paths.EnsureDir(paths.ScriptsDir(), 0o755); err != nil {
		return errors.Wrap(err, "creating scripts directory")
	}

	if err := fileutil.AtomicWriteYAML(configPath, config.Default()); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Printf("Created %s\n", paths.ScriptsDir())
	return nil
}

// confirm prompts the user for a yes/no confirmation.
// Returns true only if the user enters "y" or "yes" (case-insensitive).
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N] ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
