package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fmfix/fmfix/internal/config"
	"github.com/fmfix/fmfix/internal/editor"
	"github.com/fmfix/fmfix/internal/paths"
	"github.com/fmfix/fmfix/internal/scripts"
)

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg     *config.Config
	loadErr error
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a config check for an already-loaded configuration.
// loadErr carries the error from loading, if any.
func NewConfigCheck(cfg *config.Config, loadErr error) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, loadErr: loadErr}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the configuration diagnostic check.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if c.loadErr != nil {
		result.Status = SeverityError
		result.Message = "configuration does not load"
		result.Details = map[string]any{"error": c.loadErr.Error()}
		result.FixHint = "fmfix init --force replaces the file with known-good defaults"
		return result
	}

	file := config.FileUsed()
	if file == "" {
		result.Status = SeverityInfo
		result.Message = "no configuration file found, built-in defaults apply"
		result.FixHint = "fmfix init writes one"
		return result
	}

	if errs := config.Validate(c.cfg); len(errs) > 0 {
		problems := make([]string, len(errs))
		for i, err := range errs {
			problems[i] = err.Error()
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("configuration has %d invalid setting(s)", len(errs))
		result.Details = map[string]any{
			"file":     file,
			"problems": problems,
		}
		result.FixHint = "fmfix config edit"
		return result
	}

	result.Status = SeverityPass
	result.Message = "configuration is valid"
	result.Details = map[string]any{
		"file":              file,
		"format":            c.cfg.Format,
		"strict_delimiters": c.cfg.StrictDelimiters,
		"max_file_size":     c.cfg.MaxFileSize,
	}
	return result
}

// labeledDir pairs a directory path with its role.
type labeledDir struct {
	Label string
	Path  string
}

// DirectoriesCheck verifies that the directories fmfix writes to exist and
// are writable.
type DirectoriesCheck struct {
	dirs    []labeledDir
	missing []labeledDir
}

var (
	_ Check = (*DirectoriesCheck)(nil)
	_ Fixer = (*DirectoriesCheck)(nil)
)

// NewDirectoriesCheck creates a directory check covering the config and
// script directories plus the given backup directory.
func NewDirectoriesCheck(backupDir string) *DirectoriesCheck {
	return &DirectoriesCheck{
		dirs: []labeledDir{
			{Label: "config", Path: paths.ConfigDir()},
			{Label: "scripts", Path: paths.ScriptsDir()},
			{Label: "backups", Path: backupDir},
		},
	}
}

// Name returns the unique identifier for this check.
func (c *DirectoriesCheck) Name() string {
	return "data-directories"
}

// Category returns the grouping for this check.
func (c *DirectoriesCheck) Category() string {
	return "filesystem"
}

// Run executes the directory diagnostic check.
func (c *DirectoriesCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	type dirStatus struct {
		Label  string `json:"label"`
		Path   string `json:"path"`
		Status string `json:"status"`
	}

	c.missing = c.missing[:0]
	statuses := make([]dirStatus, 0, len(c.dirs))
	var notDir, unwritable []string

	for _, d := range c.dirs {
		ds := dirStatus{Label: d.Label, Path: d.Path}
		info, err := os.Stat(d.Path)
		switch {
		case os.IsNotExist(err):
			ds.Status = "missing"
			c.missing = append(c.missing, d)
		case err != nil:
			ds.Status = fmt.Sprintf("cannot stat: %v", err)
			notDir = append(notDir, d.Path)
		case !info.IsDir():
			ds.Status = "not a directory"
			notDir = append(notDir, d.Path)
		case !dirWritable(d.Path):
			ds.Status = "not writable"
			unwritable = append(unwritable, d.Path)
		default:
			ds.Status = "ok"
		}
		statuses = append(statuses, ds)
	}

	result.Details = map[string]any{"directories": statuses}

	switch {
	case len(notDir) > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d path(s) are unusable", len(notDir))
		result.FixHint = "move the conflicting files out of the way: " + strings.Join(notDir, ", ")
	case len(unwritable) > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d directories are not writable", len(unwritable))
		result.FixHint = "chmod u+w " + strings.Join(unwritable, " ")
	case len(c.missing) > 0:
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%d directories do not exist yet, they are created on first use", len(c.missing))
		result.Fixable = true
		result.FixHint = "fmfix doctor --fix creates them now"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d directories are usable", len(c.dirs))
	}

	return result
}

// CanFix returns true if any checked directory is missing.
func (c *DirectoriesCheck) CanFix() bool {
	return len(c.missing) > 0
}

// Fix creates the missing directories.
func (c *DirectoriesCheck) Fix() []FixResult {
	results := make([]FixResult, 0, len(c.missing))
	for _, d := range c.missing {
		res := FixResult{Path: d.Path}
		if err := os.MkdirAll(d.Path, 0o755); err != nil {
			res.Error = err
			res.Description = "creating " + d.Label + " directory failed"
		} else {
			res.Fixed = true
			res.Description = "created " + d.Label + " directory"
		}
		results = append(results, res)
	}
	return results
}

// dirWritable tests if a directory is writable by creating a temp file.
func dirWritable(path string) bool {
	f, err := os.CreateTemp(path, ".fmfix-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// EditorCheck verifies that the editor used by fmfix config edit resolves to
// an installed binary.
type EditorCheck struct{}

var _ Check = (*EditorCheck)(nil)

// NewEditorCheck creates a new editor check.
func NewEditorCheck() *EditorCheck {
	return &EditorCheck{}
}

// Name returns the unique identifier for this check.
func (c *EditorCheck) Name() string {
	return "editor"
}

// Category returns the grouping for this check.
func (c *EditorCheck) Category() string {
	return "environment"
}

// Run executes the editor diagnostic check.
func (c *EditorCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	name := editor.Detect()
	path, err := exec.LookPath(name)
	if err != nil {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("editor %q is not in PATH", name)
		result.FixHint = "set $EDITOR to an installed editor so fmfix config edit works"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("editor is %s", name)
	result.Details = map[string]any{
		"command": name,
		"path":    path,
	}
	return result
}

// ScriptLibraryCheck reports on the user script library that bare --script
// names are resolved against.
type ScriptLibraryCheck struct {
	lib *scripts.Library
}

var _ Check = (*ScriptLibraryCheck)(nil)

// NewScriptLibraryCheck creates a new script library check.
func NewScriptLibraryCheck() *ScriptLibraryCheck {
	return &ScriptLibraryCheck{lib: scripts.DefaultLibrary()}
}

// Name returns the unique identifier for this check.
func (c *ScriptLibraryCheck) Name() string {
	return "script-library"
}

// Category returns the grouping for this check.
func (c *ScriptLibraryCheck) Category() string {
	return "scripts"
}

// Run executes the script library diagnostic check.
func (c *ScriptLibraryCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	dir := c.lib.Dir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		result.Status = SeverityInfo
		result.Message = "no script library yet"
		result.Details = map[string]any{"path": dir}
		return result
	}

	list, err := c.lib.List()
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read script library: %v", err)
		result.Details = map[string]any{"path": dir}
		return result
	}

	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d script(s) in the library", len(list))
	result.Details = map[string]any{
		"path":    dir,
		"scripts": names,
	}
	return result
}
