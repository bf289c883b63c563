package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/pkg/fileutil"
)

// Manager owns the backup store under a single root directory.
type Manager struct {
	rootDir        string
	retentionCount int
	version        string
}

// Option configures a Manager.
type Option func(*Manager)

// WithDir sets the root backup directory.
func WithDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups to retain.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithVersion sets the fmfix version recorded in manifests.
func WithVersion(v string) Option {
	return func(m *Manager) {
		m.version = v
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupsDir(),
		retentionCount: DefaultRetentionCount,
		version:        "dev",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RetentionCount returns how many backups the manager keeps when pruning.
func (m *Manager) RetentionCount() int {
	return m.retentionCount
}

// Create creates a backup of the specified paths.
// Returns the manifest describing the backup, or an error if the backup fails.
//
// The paths can be files or directories. Directories are backed up recursively.
// Each file is copied with preserved permissions and verified with a SHA256
// hash on restore. Paths that do not exist are skipped, so a run that creates
// new documents backs up only the ones already on disk.
func (m *Manager) Create(pathList []string) (*Manifest, error) {
	if len(pathList) == 0 {
		return nil, errors.New("at least one path is required")
	}

	backupID, backupPath, err := m.claimBackupDir()
	if err != nil {
		return nil, err
	}

	var files []File

	for _, p := range pathList {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", p)
		}

		if info.IsDir() {
			dirFiles, err := m.backupDirectory(p, backupPath)
			if err != nil {
				return nil, errors.Wrapf(err, "backing up directory %s", p)
			}
			files = append(files, dirFiles...)
		} else {
			bf, err := m.backupFile(p, backupPath)
			if err != nil {
				return nil, errors.Wrapf(err, "backing up file %s", p)
			}
			files = append(files, *bf)
		}
	}

	if len(files) == 0 {
		os.RemoveAll(backupPath)
		return nil, ErrNothingToBackUp
	}

	manifest := &Manifest{
		Version:      ManifestVersion,
		CreatedAt:    time.Now().UTC(),
		Files:        files,
		FmfixVersion: m.version,
		ID:           backupID,
	}

	manifestPath := filepath.Join(backupPath, "manifest.json")
	if err := fileutil.AtomicWriteJSON(manifestPath, manifest); err != nil {
		return nil, errors.Wrap(err, "writing manifest")
	}

	return manifest, nil
}

// claimBackupDir reserves a fresh timestamped backup directory. Backups in
// the same second get a numeric suffix so IDs never collide.
func (m *Manager) claimBackupDir() (id, path string, err error) {
	if err := os.MkdirAll(m.rootDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "creating backup root")
	}

	base := time.Now().Format("20060102T150405")
	for attempt := 0; ; attempt++ {
		id = base
		if attempt > 0 {
			id = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		path = filepath.Join(m.rootDir, id)

		mkErr := os.Mkdir(path, 0o755)
		if mkErr == nil {
			return id, path, nil
		}
		if !os.IsExist(mkErr) {
			return "", "", errors.Wrap(mkErr, "creating backup directory")
		}
	}
}

// backupFile copies a single document to the backup directory.
func (m *Manager) backupFile(src, backupPath string) (*File, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}

	relPath := generateRelPath(abs)
	dst := filepath.Join(backupPath, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(abs, dst)
	if err != nil {
		return nil, err
	}

	return &File{
		OriginalPath: abs,
		RelPath:      relPath,
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// backupDirectory recursively backs up all files in a directory.
func (m *Manager) backupDirectory(srcDir, backupPath string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		bf, err := m.backupFile(path, backupPath)
		if err != nil {
			return err
		}
		files = append(files, *bf)
		return nil
	})

	return files, err
}

// Restore restores documents from a backup to their original locations.
// The backupID should be in timestamp format (e.g., "20260123T100712").
func (m *Manager) Restore(backupID string) error {
	if backupID == "" {
		return errors.New("backup ID is required")
	}

	manifest, err := m.Get(backupID)
	if err != nil {
		return err
	}

	backupPath := filepath.Join(m.rootDir, backupID)

	for _, bf := range manifest.Files {
		srcPath := filepath.Join(backupPath, bf.RelPath)

		// Verify integrity before restoring
		hash, err := hashFile(srcPath)
		if err != nil {
			return errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		if hash != bf.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}

		if err := os.MkdirAll(filepath.Dir(bf.OriginalPath), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", bf.OriginalPath)
		}

		if _, _, err := copyFile(srcPath, bf.OriginalPath); err != nil {
			return errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}

		if err := os.Chmod(bf.OriginalPath, bf.Mode); err != nil {
			return errors.Wrapf(err, "setting permissions for %s", bf.OriginalPath)
		}
	}

	return nil
}

// List returns all available backups, sorted by date (newest first).
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifest, err := m.Get(entry.Name())
		if err != nil {
			// Skip invalid backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return strings.Compare(b.ID, a.ID)
	})

	return manifests, nil
}

// Prune removes old backups beyond the specified retention count.
// Keeps the most recent 'keep' backups.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	// Already sorted newest first, delete everything beyond 'keep'
	for i := keep; i < len(manifests); i++ {
		backupPath := filepath.Join(m.rootDir, manifests[i].ID)
		if err := os.RemoveAll(backupPath); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}

	return nil
}

// Get returns the manifest for a specific backup.
func (m *Manager) Get(backupID string) (*Manifest, error) {
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}

	manifestPath := filepath.Join(m.rootDir, backupID, "manifest.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = backupID
	return &manifest, nil
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file from src to dst, returning the SHA256 hash and mode.
// The destination file is created with 0644 permissions initially,
// then updated to match the source file's permissions.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	// Compute hash while copying
	h := sha256.New()
	w := io.MultiWriter(dstFile, h)

	if _, err := io.Copy(w, srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a storage path inside the backup
// directory. The leading separator and any drive-letter colon are dropped so
// the result is always a clean relative path.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)

	if len(clean) > 0 && clean[0] == filepath.Separator {
		clean = clean[1:]
	}
	clean = strings.ReplaceAll(clean, ":", "")

	return clean
}
