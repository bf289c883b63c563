// Package backup provides document backup and restore capabilities for fmfix.
//
// fmfix rewrites files in place, so this package keeps timestamped snapshots
// of documents before they are modified, allowing users to list, restore,
// and prune those snapshots.
//
// # Backup Strategy
//
// Each backup is stored in a timestamped directory containing:
//
//   - manifest.json: Metadata about the backup including file hashes for integrity
//   - Copied files: Original documents with preserved permissions
//
// Backup locations follow this hierarchy:
//
//	<XDG data home>/fmfix/backups/
//	└── {timestamp}/
//	    ├── manifest.json
//	    └── {copied files...}
//
// Backups created within the same second get a numeric suffix, so IDs are
// always unique.
//
// # Creating Backups
//
// Use [Manager.Create] to snapshot documents before a rewrite:
//
//	mgr := backup.NewManager()
//	manifest, err := mgr.Create([]string{"posts/a.md", "posts/b.md"})
//
// The backup captures file contents, permissions, and generates SHA256
// checksums for integrity verification during restore. Paths that do not
// exist yet are skipped.
//
// # Restoring Backups
//
// Use [Manager.Restore] to put the documents of a backup back in place:
//
//	err := mgr.Restore("20260123T100712")
//
// The restore operation verifies file integrity using the stored checksums
// and returns [ErrBackupCorrupted] on a mismatch.
//
// # Retention Management
//
// [Manager.Prune] removes old backups beyond the retention count:
//
//	err := mgr.Prune(mgr.RetentionCount())
//
// The default retention count is 5 backups.
//
// # Listing Backups
//
// [Manager.List] retrieves available backups sorted by date (newest first):
//
//	manifests, err := mgr.List()
//	for _, m := range manifests {
//	    fmt.Printf("%s: %d files\n", m.ID, len(m.Files))
//	}
package backup
