package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testSecret = "b4f9c2e8a1d7f3b6c0e5d9a2"

// writeScript creates an executable script file and returns its path.
func writeScript(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/bash\nexit 0\n"), 0750); err != nil {
		t.Fatalf("Failed to create script: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hookdeploy.yaml")
	content := `
secret: ` + testSecret + `
branches: [main, staging]
script: /opt/deploy.sh
port: 9100
`
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if file.Secret != testSecret {
		t.Errorf("Expected secret %q, got %q", testSecret, file.Secret)
	}
	if !reflect.DeepEqual(file.Branches, []string{"main", "staging"}) {
		t.Errorf("Unexpected branches: %v", file.Branches)
	}
	if file.Port != 9100 {
		t.Errorf("Expected port 9100, got %d", file.Port)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("secret: [unclosed"), 0640); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestBuild_GlobalScript(t *testing.T) {
	script := writeScript(t, "deploy.sh")

	settings, err := Build(&File{
		Secret: testSecret,
		Script: script,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if settings.Global == nil {
		t.Fatal("Expected global target")
	}
	if settings.Global.Script() != script {
		t.Errorf("Expected script %s, got %s", script, settings.Global.Script())
	}

	// Global mode resolves any repository
	target, ok := settings.ResolveTarget("anyone/anything")
	if !ok || target != settings.Global {
		t.Error("Expected global target for arbitrary repository")
	}

	// Defaults
	if !settings.AllowsBranch("main") || !settings.AllowsBranch("master") {
		t.Error("Expected default branches main and master")
	}
	if settings.AllowsBranch("develop") {
		t.Error("develop should not be allowed by default")
	}
	if settings.Host != DefaultHost || settings.Port != DefaultPort {
		t.Errorf("Expected default host/port, got %s:%d", settings.Host, settings.Port)
	}
}

func TestBuild_PerRepository(t *testing.T) {
	script := writeScript(t, "widgets.sh")

	settings, err := Build(&File{
		Secret:   testSecret,
		Branches: []string{"main"},
		Repositories: map[string]string{
			"octo/widgets": script + " --fast",
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	target, ok := settings.ResolveTarget("octo/widgets")
	if !ok {
		t.Fatal("Expected target for octo/widgets")
	}
	if !reflect.DeepEqual(target.Command, []string{script, "--fast"}) {
		t.Errorf("Unexpected command: %v", target.Command)
	}

	if _, ok := settings.ResolveTarget("octo/unmapped"); ok {
		t.Error("Expected no target for unmapped repository")
	}
	if settings.TargetCount() != 1 {
		t.Errorf("Expected 1 target, got %d", settings.TargetCount())
	}
}

func TestBuild_Errors(t *testing.T) {
	script := "/bin/true" // exists on any reasonable system

	tests := []struct {
		name    string
		file    *File
		wantMsg string
	}{
		{
			"missing secret",
			&File{Script: script},
			"secret",
		},
		{
			"no script at all",
			&File{Secret: testSecret},
			"no deployment script configured",
		},
		{
			"both modes",
			&File{Secret: testSecret, Script: script, Repositories: map[string]string{"a/b": script}},
			"mutually exclusive",
		},
		{
			"relative script",
			&File{Secret: testSecret, Script: "deploy.sh"},
			"absolute",
		},
		{
			"script with metacharacters",
			&File{Secret: testSecret, Script: "/opt/deploy.sh; rm -rf /"},
			"metacharacters",
		},
		{
			"nonexistent script",
			&File{Secret: testSecret, Script: "/nonexistent/deploy.sh"},
			"does not exist",
		},
		{
			"invalid repository key",
			&File{Secret: testSecret, Repositories: map[string]string{"no-slash": script}},
			"owner/name",
		},
		{
			"invalid branch",
			&File{Secret: testSecret, Script: script, Branches: []string{"-rf"}},
			"branch",
		},
		{
			"port out of range",
			&File{Secret: testSecret, Script: script, Port: 70000},
			"port out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.file)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestParseBranches(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"main,master", []string{"main", "master"}},
		{"main, staging ", []string{"main", "staging"}},
		{"main", []string{"main"}},
		{"", nil},
		{" , ", nil},
	}

	for _, tt := range tests {
		if got := ParseBranches(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseBranches(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
