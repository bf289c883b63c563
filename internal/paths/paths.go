package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "fmfix"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// This is a thin wrapper around os.UserHomeDir for consistency.
// Note: It returns an empty string on error for backward compatibility.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns the fmfix configuration directory.
// Returns: <ConfigHome>/fmfix/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ScriptsDir returns the user script library directory. Scripts named by
// --script without a path separator are looked up here when they do not
// exist relative to the working directory.
// Returns: <DataHome>/fmfix/scripts/
func ScriptsDir() string {
	return filepath.Join(DataHome(), AppName, "scripts")
}

// BackupsDir returns the directory where pre-rewrite backups are stored.
// Returns: <DataHome>/fmfix/backups/
func BackupsDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}
