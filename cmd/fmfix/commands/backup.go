package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fmfix/fmfix/cmd"
	"github.com/fmfix/fmfix/internal/backup"
	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/paths"
)

var (
	backupDirFlag  string
	backupListJSON bool
	backupKeep     int
)

func init() {
	backupCmd.PersistentFlags().StringVar(&backupDirFlag, "dir", "",
		"backup directory (default: the fmfix data directory)")
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")
	backupPruneCmd.Flags().IntVar(&backupKeep, "keep", backup.DefaultRetentionCount,
		"number of backups to retain")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage document backups",
	Long: `Manage the snapshots fmfix takes of documents before rewriting them.

Backups are created when fmfix runs with --backup and can also be created
manually. Each backup is a timestamped directory holding copies of the
documents plus a manifest with integrity hashes.

Without a subcommand, lists available backups.`,
	Example: `  # List all backups
  fmfix backup

  # Snapshot files by hand before experimenting
  fmfix backup create posts/*.md

  # Put the most recent snapshot back
  fmfix backup restore

See Also: fmfix --backup`,
	RunE: runBackupList,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create FILES...",
	Short: "Create a manual backup",
	Long: `Create a backup of the given documents.

fmfix backs documents up automatically when run with --backup. This command
creates an additional snapshot by hand, for example before an experimental
bulk edit. Paths that do not exist are skipped; directories are backed up
recursively.`,
	Example: `  # Snapshot a set of posts
  fmfix backup create posts/*.md

  # Snapshot a whole content tree
  fmfix backup create docs/

  See Also: fmfix backup list, fmfix backup restore`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List all available document backups, most recent first.

Each line shows the backup ID, when it was taken, and how many documents it
holds. Use the ID with 'fmfix backup restore'.`,
	Example: `  # List all backups
  fmfix backup list

  # Output as JSON
  fmfix backup list --json

  See Also: fmfix backup restore, fmfix backup prune`,
	RunE: runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore documents from a backup",
	Long: `Restore documents from a backup to their original locations.

If no backup ID is provided, the most recent backup is restored. All
documents in the backup are written back in place with their original
permissions; existing files are overwritten. File integrity is verified
against the manifest's hashes before anything is touched.`,
	Example: `  # Restore the most recent backup
  fmfix backup restore

  # Restore a specific backup
  fmfix backup restore 20260123T100712

  See Also: fmfix backup list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupRestore,
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long:  `Remove backups beyond the retention count, keeping the most recent ones.`,
	Example: `  # Keep the five most recent backups
  fmfix backup prune

  # Keep only the most recent backup
  fmfix backup prune --keep 1

  See Also: fmfix backup list`,
	RunE: runBackupPrune,
}

// resolveBackupDir picks the backup location: the --dir override, the
// configured backup_dir, or the default data directory, in that order.
func resolveBackupDir() string {
	switch {
	case backupDirFlag != "":
		return backupDirFlag
	case cfg != nil && cfg.BackupDir != "":
		return cfg.BackupDir
	default:
		return paths.BackupsDir()
	}
}

func backupManager() *backup.Manager {
	return backup.NewManager(
		backup.WithDir(resolveBackupDir()),
		backup.WithVersion(cmd.Version),
	)
}

func runBackupCreate(_ *cobra.Command, args []string) error {
	return runBackupCreateWithWriter(os.Stdout, args)
}

func runBackupCreateWithWriter(w io.Writer, args []string) error {
	mgr := backupManager()

	manifest, err := mgr.Create(args)
	if err != nil {
		if errors.Is(err, backup.ErrNothingToBackUp) {
			fmt.Fprintln(w, "No backup created. None of the given files exist.")
			return nil
		}
		return errors.Wrap(err, "creating backup")
	}

	fmt.Fprintf(w, "%s Created backup %s (%d files)\n",
		color.GreenString("✓"), manifest.ID, len(manifest.Files))
	return nil
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	FileCount    int       `json:"file_count"`
	FmfixVersion string    `json:"fmfix_version"`
}

func runBackupList(_ *cobra.Command, _ []string) error {
	return runBackupListWithWriter(os.Stdout)
}

func runBackupListWithWriter(w io.Writer) error {
	mgr := backupManager()

	manifests, err := mgr.List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	if backupListJSON {
		output := make([]backupInfoOutput, len(manifests))
		for i, m := range manifests {
			output[i] = backupInfoOutput{
				ID:           m.ID,
				CreatedAt:    m.CreatedAt,
				FileCount:    len(m.Files),
				FmfixVersion: m.FmfixVersion,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	if len(manifests) == 0 {
		fmt.Fprintln(w, "No backups available")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created when fmfix rewrites files with --backup.")
		fmt.Fprintln(w, "You can also create one manually with: fmfix backup create")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFILES\tVERSION")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			color.GreenString(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			len(m.Files),
			m.FmfixVersion)
	}
	return tw.Flush()
}

func runBackupRestore(_ *cobra.Command, args []string) error {
	return runBackupRestoreWithWriter(os.Stdout, args)
}

func runBackupRestoreWithWriter(w io.Writer, args []string) error {
	mgr := backupManager()

	var backupID string
	if len(args) > 0 {
		backupID = args[0]
	} else {
		manifests, err := mgr.List()
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.New("no backups found")
			}
			return errors.Wrap(err, "listing backups")
		}
		backupID = manifests[0].ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", backupID)
	}

	manifest, err := mgr.Get(backupID)
	if err != nil {
		return errors.Wrapf(err, "getting backup %s", backupID)
	}

	fmt.Fprintf(w, "Restoring %d files from backup %s...\n", len(manifest.Files), backupID)

	if err := mgr.Restore(backupID); err != nil {
		return errors.Wrap(err, "restoring backup")
	}

	fmt.Fprintf(w, "%s Restored %d files from backup %s\n",
		color.GreenString("✓"), len(manifest.Files), backupID)
	return nil
}

func runBackupPrune(_ *cobra.Command, _ []string) error {
	return runBackupPruneWithWriter(os.Stdout)
}

func runBackupPruneWithWriter(w io.Writer) error {
	mgr := backupManager()

	before, err := mgr.List()
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			fmt.Fprintln(w, "No backups to prune")
			return nil
		}
		return errors.Wrap(err, "listing backups")
	}

	if err := mgr.Prune(backupKeep); err != nil {
		return errors.Wrap(err, "pruning backups")
	}

	removed := len(before) - backupKeep
	if removed < 0 {
		removed = 0
	}
	fmt.Fprintf(w, "Removed %d backups, %d remain\n", removed, min(backupKeep, len(before)))
	return nil
}
