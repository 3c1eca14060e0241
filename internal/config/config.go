package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hookdeploy/internal/security"
	"hookdeploy/pkg/cmdutil"
	"hookdeploy/pkg/fileutil"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 9000
)

// DefaultBranches are the branches eligible for deployment when the
// configuration does not name any.
var DefaultBranches = []string{"main", "master"}

// File is the raw YAML configuration structure.
type File struct {
	Secret       string            `yaml:"secret"`
	Branches     []string          `yaml:"branches"`
	Script       string            `yaml:"script"`
	Repositories map[string]string `yaml:"repositories"`
	Serialize    bool              `yaml:"serialize"`
	Host         string            `yaml:"host"`
	Port         int               `yaml:"port"`
}

// Target is a resolved deployment script: an absolute script path plus any
// configured arguments, ready to hand to the dispatcher.
type Target struct {
	Repo    string   // repository full name, or "*" for the global script
	Command []string // argv; Command[0] is the validated script path
}

// Script returns the script path of the target.
func (t *Target) Script() string {
	return t.Command[0]
}

// Settings is the validated, immutable runtime configuration. It is built
// once at startup and shared read-only between the router and dispatcher.
type Settings struct {
	Secret    string
	Branches  []string
	Global    *Target            // set in single-script mode
	Targets   map[string]*Target // set in per-repository mode
	Serialize bool
	Host      string
	Port      int

	branchSet map[string]bool
}

// AllowsBranch reports whether a branch is eligible for deployment.
func (s *Settings) AllowsBranch(branch string) bool {
	return s.branchSet[branch]
}

// ResolveTarget finds the deployment target for a repository full name.
// In single-script mode every repository resolves to the global script.
func (s *Settings) ResolveTarget(repoFullName string) (*Target, bool) {
	if s.Global != nil {
		return s.Global, true
	}
	target, ok := s.Targets[repoFullName]
	return target, ok
}

// TargetCount returns the number of configured deployment targets.
func (s *Settings) TargetCount() int {
	if s.Global != nil {
		return 1
	}
	return len(s.Targets)
}

// LoadFile reads and parses the YAML configuration file. Validation is a
// separate step (Build) so callers can layer flag and environment overrides
// on top of the file first.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return &file, nil
}

// ParseBranches splits a comma-separated branch list, trimming whitespace
// and dropping empty entries. Used for the HOOKDEPLOY_BRANCHES override.
func ParseBranches(list string) []string {
	var branches []string
	for _, b := range strings.Split(list, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			branches = append(branches, b)
		}
	}
	return branches
}

// Build validates the raw configuration and produces immutable Settings.
// Any violation is fatal: the caller must refuse to bind the listener.
func Build(file *File) (*Settings, error) {
	var errors []string

	if err := security.ValidateSecret(file.Secret); err != nil {
		errors = append(errors, fmt.Sprintf("  - secret: %v", err))
	}

	branches := file.Branches
	if len(branches) == 0 {
		branches = DefaultBranches
	}
	branchSet := make(map[string]bool, len(branches))
	for _, branch := range branches {
		if err := security.ValidateBranchName(branch); err != nil {
			errors = append(errors, fmt.Sprintf("  - branch '%s': %v", branch, err))
			continue
		}
		branchSet[branch] = true
	}

	if file.Script == "" && len(file.Repositories) == 0 {
		errors = append(errors, "  - no deployment script configured: set 'script' or 'repositories'")
	}
	if file.Script != "" && len(file.Repositories) > 0 {
		errors = append(errors, "  - 'script' and 'repositories' are mutually exclusive")
	}

	settings := &Settings{
		Secret:    file.Secret,
		Branches:  branches,
		Serialize: file.Serialize,
		Host:      file.Host,
		Port:      file.Port,
		branchSet: branchSet,
	}

	if settings.Host == "" {
		settings.Host = DefaultHost
	}
	if settings.Port == 0 {
		settings.Port = DefaultPort
	}
	if settings.Port < 1 || settings.Port > 65535 {
		errors = append(errors, fmt.Sprintf("  - port out of range: %d", settings.Port))
	}

	if file.Script != "" {
		target, errs := buildTarget("*", file.Script)
		errors = append(errors, errs...)
		settings.Global = target
	}

	if len(file.Repositories) > 0 {
		settings.Targets = make(map[string]*Target, len(file.Repositories))
		for repo, entry := range file.Repositories {
			if err := security.ValidateRepoName(repo); err != nil {
				errors = append(errors, fmt.Sprintf("  - repository '%s': %v", repo, err))
				continue
			}
			target, errs := buildTarget(repo, entry)
			errors = append(errors, errs...)
			if target != nil {
				settings.Targets[repo] = target
			}
		}
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n%s", strings.Join(errors, "\n"))
	}

	return settings, nil
}

// buildTarget parses and statically validates one configured script entry.
func buildTarget(repo, entry string) (*Target, []string) {
	var errors []string

	command, err := cmdutil.SplitCommand(entry)
	if err != nil {
		return nil, []string{fmt.Sprintf("  - script for '%s': %v", repo, err)}
	}

	script := command[0]
	if err := security.ValidateScriptPath(script); err != nil {
		errors = append(errors, fmt.Sprintf("  - script for '%s': %v", repo, err))
	} else if !fileutil.FileExists(script) {
		errors = append(errors, fmt.Sprintf("  - script for '%s' does not exist: '%s'", repo, script))
	}

	if len(errors) > 0 {
		return nil, errors
	}

	return &Target{Repo: repo, Command: command}, nil
}
