package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Safe patterns for validation
	branchPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)
	repoPattern   = regexp.MustCompile(`^[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+$`)
)

// shellMetachars are characters that could be abused for command injection
// if a configured path ever ended up inside a shell command line.
const shellMetachars = ";&|`$<>\n"

// ValidateScriptPath ensures a configured deployment script path is safe to
// hand to the dispatcher. The path must be absolute after normalization,
// free of shell metacharacters, and free of traversal segments.
//
// Existence on disk is checked separately (at startup and again at dispatch
// time); this function is purely static.
func ValidateScriptPath(path string) error {
	if path == "" {
		return fmt.Errorf("script path cannot be empty")
	}

	if strings.ContainsAny(path, shellMetachars) {
		return fmt.Errorf("script path contains shell metacharacters: %s", path)
	}

	// Check for .. before cleaning (filepath.Clean removes them)
	for _, seg := range strings.Split(path, string(filepath.Separator)) {
		if seg == ".." {
			return fmt.Errorf("script path contains traversal elements: %s", path)
		}
	}

	if !filepath.IsAbs(filepath.Clean(path)) {
		return fmt.Errorf("script path must be absolute, got '%s'", path)
	}

	return nil
}

// ValidateBranchName ensures a branch name is safe for matching against
// webhook refs and exporting into a child process environment.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if strings.HasPrefix(branch, "-") {
		return fmt.Errorf("branch name cannot start with '-'")
	}
	if !branchPattern.MatchString(branch) {
		return fmt.Errorf("branch name contains invalid characters")
	}
	return nil
}

// ValidateRepoName ensures a repository identifier has the owner/name shape
// GitHub uses for full names.
func ValidateRepoName(fullName string) error {
	if fullName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if strings.HasPrefix(fullName, "-") || strings.HasPrefix(fullName, ".") {
		return fmt.Errorf("repository name cannot start with '-' or '.'")
	}
	if !repoPattern.MatchString(fullName) {
		return fmt.Errorf("repository name must be in 'owner/name' form, got '%s'", fullName)
	}
	return nil
}
