package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups to retain.
const DefaultRetentionCount = 5

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates backup file integrity verification failed.
	// This occurs when a file's SHA256 hash doesn't match the manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates none of the requested paths exist on disk.
	ErrNothingToBackUp = errors.New("no files to back up")
)

// Manifest contains metadata about a backup.
// It is stored as manifest.json in each backup directory.
type Manifest struct {
	// Version is the manifest format version for forward compatibility.
	Version int `json:"version"`

	// CreatedAt is when the backup was created.
	CreatedAt time.Time `json:"created_at"`

	// Files contains metadata for each backed up document.
	Files []File `json:"files"`

	// FmfixVersion is the version of fmfix that created this backup.
	FmfixVersion string `json:"fmfix_version"`

	// ID is the backup identifier (timestamp format: 20260123T100712).
	// This field is populated when loading from disk but not stored in JSON.
	ID string `json:"-"`
}

// File contains metadata for a single backed up document.
type File struct {
	// OriginalPath is the absolute path where the document was located.
	OriginalPath string `json:"original_path"`

	// RelPath is the relative path within the backup directory.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA256 hash of the file contents.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`
}
