// Package paths provides cross-platform path resolution for the fmfix CLI's
// configuration and script library directories.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share).
//
// # Directory Helpers
//
//	paths.ConfigDir()  // <ConfigHome>/fmfix/      configuration files
//	paths.ScriptsDir() // <DataHome>/fmfix/scripts/  reusable Lua scripts
//
// # Error Handling
//
// [Home] returns an empty string when the home directory cannot be resolved;
// use [ResolveHome] when the error matters.
package paths
