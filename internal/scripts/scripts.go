// Package scripts maintains the user's library of Lua fix scripts.
//
// The library is a flat directory of *.lua files. A script's first comment
// line doubles as its description in listings.
package scripts

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmfix/fmfix/internal/errors"
	"github.com/fmfix/fmfix/internal/logging"
	"github.com/fmfix/fmfix/internal/paths"
)

// Script describes one entry in the library.
type Script struct {
	// Name is the file name of the script, extension included. It is what
	// users pass to fmfix -f.
	Name string `json:"name"`

	// Path is the absolute location of the script on disk.
	Path string `json:"path"`

	// Description is the first comment line of the script, if any.
	Description string `json:"description,omitempty"`
}

// Library reads scripts from a single directory.
type Library struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for per-script warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// NewLibrary creates a Library rooted at dir.
func NewLibrary(dir string, opts ...Option) *Library {
	l := &Library{
		dir:    dir,
		logger: logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultLibrary returns the library at the user's script directory.
func DefaultLibrary() *Library {
	return NewLibrary(paths.ScriptsDir())
}

// Dir returns the directory the library reads from.
func (l *Library) Dir() string {
	return l.dir
}

// List returns the scripts in the library in file name order. A library
// directory that does not exist yet yields an empty list, not an error.
func (l *Library) List() ([]Script, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading script library %s", l.dir)
	}

	scripts := make([]Script, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		scripts = append(scripts, Script{
			Name:        entry.Name(),
			Path:        path,
			Description: l.readDescription(path),
		})
	}

	return scripts, nil
}

// Resolve maps a bare script name to its path in the library. The boolean
// reports whether the script exists.
func (l *Library) Resolve(name string) (string, bool) {
	path := filepath.Join(l.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// readDescription extracts the description from a script: the first
// non-blank line when it is a Lua comment, comment markers stripped.
// Shebang lines are skipped, matching how Lua itself treats them.
func (l *Library) readDescription(path string) string {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("cannot read library script", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first && strings.HasPrefix(line, "#") {
			first = false
			continue
		}
		if !strings.HasPrefix(line, "--") {
			return ""
		}
		return strings.TrimSpace(strings.TrimLeft(line, "-"))
	}
	return ""
}
