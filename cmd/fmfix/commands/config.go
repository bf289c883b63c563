package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fmfix/fmfix/internal/editor"
	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/pkg/fileutil"
	"github.com/fmfix/fmfix/pkg/frontmatter"
)

// configKeys are the recognized configuration keys, in file order.
var configKeys = []string{"version", "format", "strict_delimiters", "max_file_size", "backup_dir"}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fmfix configuration",
	Long: `Manage fmfix configuration stored in ~/.config/fmfix/config.yaml.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  fmfix config

  # Get a specific value
  fmfix config get format

  # Set a value
  fmfix config set strict_delimiters true

See Also: fmfix init`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get a single configuration value by key.`,
	Example: `  # Get the default dialect
  fmfix config get format

See Also: fmfix config set, fmfix config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write it back to the config file.

Values are validated per key: format must be yaml or toml,
strict_delimiters must be a boolean, version and max_file_size must be
integers, and backup_dir is taken as-is.`,
	Example: `  # Default to TOML frontmatter
  fmfix config set format toml

  # Reject unclosed delimiters
  fmfix config set strict_delimiters true

See Also: fmfix config get, fmfix config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	Example: `  # List all configuration
  fmfix config list

See Also: fmfix config get, fmfix config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $EDITOR, falling back to $VISUAL, then nano, then vi.
If no configuration file exists, prints an error suggesting to run 'fmfix init'.`,
	Example: `  # Open config in default editor
  fmfix config edit

  # Open with specific editor
  EDITOR=nano fmfix config edit

See Also: fmfix config list, fmfix init`,
	RunE: runConfigEdit,
}

func runConfigGet(_ *cobra.Command, args []string) error {
	key := args[0]

	if !viper.IsSet(key) {
		fmt.Println("not set")
		return nil
	}

	fmt.Println(viper.GetString(key))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	switch key {
	case "format":
		if !frontmatter.Format(value).Valid() {
			return errors.Newf("invalid format %q (valid: %s, %s)",
				value, frontmatter.FormatYAML, frontmatter.FormatTOML)
		}
		viper.Set(key, value)

	case "strict_delimiters":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Newf("%s must be a boolean, got %q", key, value)
		}
		viper.Set(key, b)

	case "version", "max_file_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Newf("%s must be an integer, got %q", key, value)
		}
		viper.Set(key, n)

	case "backup_dir":
		viper.Set(key, value)

	default:
		return errors.Newf("unknown key %q (valid: %s)",
			key, strings.Join(configKeys, ", "))
	}

	if err := writeConfig(); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(currentConfig())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Print(string(data))
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath := filepath.Join(paths.ConfigDir(), "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return errors.Newf("config file not found at %s\nRun 'fmfix init' to create it", configPath)
	}

	return editor.Open(configPath)
}

// currentConfig snapshots the known configuration keys from viper.
func currentConfig() map[string]any {
	return map[string]any{
		"version":           viper.GetInt("version"),
		"format":            viper.GetString("format"),
		"strict_delimiters": viper.GetBool("strict_delimiters"),
		"max_file_size":     viper.GetInt64("max_file_size"),
		"backup_dir":        viper.GetString("backup_dir"),
	}
}

// writeConfig writes the current viper configuration to the config file.
func writeConfig() error {
	configPath := filepath.Join(paths.ConfigDir(), "config.yaml")

	if err := paths.EnsureDir(paths.ConfigDir(), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if err := fileutil.AtomicWriteYAML(configPath, currentConfig()); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}
