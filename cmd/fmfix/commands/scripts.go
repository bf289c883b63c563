package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/internal/scripts"
)

var (
	scriptsJSON bool
	scriptsPick bool
)

func init() {
	scriptsCmd.Flags().BoolVar(&scriptsJSON, "json", false,
		"output the script list as JSON")
	scriptsCmd.Flags().BoolVar(&scriptsPick, "pick", false,
		"pick a script interactively and print its path")
	rootCmd.AddCommand(scriptsCmd)
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts [query]",
	Short: "List Lua scripts in the script library",
	Long: `List the Lua scripts stored in the user script library.

Library scripts can be run by bare name with fmfix -f NAME.lua. The first
comment line of a script doubles as its description in the listing.

A query narrows the list with case-insensitive matching against script
names and descriptions. With --pick an interactive finder opens instead
and the chosen script's path is printed, ready for shell substitution.`,
	Example: `  # List every script in the library
  fmfix scripts

  # Find scripts that mention tags
  fmfix scripts tags

  # Pick one interactively and run it
  fmfix -f "$(fmfix scripts --pick)" posts/*.md

  See Also: fmfix init, fmfix doctor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScripts,
}

func runScripts(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) > 0 {
		query = args[0]
	}

	lib := scripts.NewLibrary(paths.ScriptsDir(),
		scripts.WithLogger(logging.FromContext(cmd.Context())))
	return runScriptsWithWriter(cmd.OutOrStdout(), lib, query)
}

// runScriptsWithWriter allows injecting the library and writer for testing.
func runScriptsWithWriter(w io.Writer, lib *scripts.Library, query string) error {
	list, err := lib.List()
	if err != nil {
		return err
	}

	if len(list) == 0 && !scriptsJSON {
		fmt.Fprintf(w, "Script library is empty.\n\n")
		fmt.Fprintf(w, "Drop Lua scripts into %s and run them by name:\n", lib.Dir())
		fmt.Fprintln(w, "  fmfix -f NAME.lua FILES...")
		return nil
	}

	results := scripts.Match(list, query)

	switch {
	case scriptsPick:
		return pickScript(w, results)
	case scriptsJSON:
		return outputScriptsJSON(w, results)
	default:
		return outputScriptsTable(w, results)
	}
}

// pickScript opens a fuzzy finder over the scripts and prints the path of
// the chosen one, so the result can be substituted into an fmfix -f run.
func pickScript(w io.Writer, list []scripts.Script) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No scripts found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(
		list,
		func(i int) string {
			if list[i].Description == "" {
				return list[i].Name
			}
			return fmt.Sprintf("%s: %s", list[i].Name, list[i].Description)
		},
		fuzzyfinder.WithPreviewWindow(func(i, width, height int) string {
			if i == -1 {
				return ""
			}
			return previewScript(list[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "picking a script")
	}

	fmt.Fprintln(w, list[idx].Path)
	return nil
}

// previewScript renders the preview pane: the script path followed by the
// head of its source.
func previewScript(s scripts.Script) string {
	const maxPreview = 4096

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Sprintf("%s\n\n(unreadable: %v)", s.Path, err)
	}

	src := string(data)
	if len(src) > maxPreview {
		src = src[:maxPreview] + "\n..."
	}
	return fmt.Sprintf("%s\n\n%s", s.Path, src)
}

// outputScriptsJSON outputs the script list in JSON format.
func outputScriptsJSON(w io.Writer, list []scripts.Script) error {
	if list == nil {
		list = []scripts.Script{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(list), "encoding script list")
}

// outputScriptsTable outputs the script list in a human-readable table.
func outputScriptsTable(w io.Writer, list []scripts.Script) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No scripts found.")
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", bold.Sprint("NAME"), bold.Sprint("DESCRIPTION"))
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\n",
			color.GreenString(s.Name),
			dim.Sprint(truncate(s.Description, 60)))
	}
	return tw.Flush()
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
