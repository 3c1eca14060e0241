package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSearchPaths(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "present.yaml")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	found, err := SearchPaths([]string{
		filepath.Join(tmpDir, "missing.yaml"),
		existing,
	})
	if err != nil {
		t.Fatalf("SearchPaths failed: %v", err)
	}
	if found != existing {
		t.Errorf("Expected %s, got %s", existing, found)
	}

	if _, err := SearchPaths([]string{filepath.Join(tmpDir, "nope")}); err == nil {
		t.Error("Expected error when no path exists")
	}
}

func TestSearchPathsOptional(t *testing.T) {
	tmpDir := t.TempDir()

	if got := SearchPathsOptional([]string{filepath.Join(tmpDir, "nope")}); got != "" {
		t.Errorf("Expected empty string for missing file, got %s", got)
	}

	existing := filepath.Join(tmpDir, "conf.yaml")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if got := SearchPathsOptional([]string{existing}); got != existing {
		t.Errorf("Expected %s, got %s", existing, got)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	if FileExists(tmpDir) {
		t.Error("FileExists should be false for a directory")
	}
	if FileExists(filepath.Join(tmpDir, "missing")) {
		t.Error("FileExists should be false for a missing path")
	}

	file := filepath.Join(tmpDir, "f")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if !FileExists(file) {
		t.Error("FileExists should be true for a regular file")
	}
}

func TestDirExists(t *testing.T) {
	tmpDir := t.TempDir()

	if !DirExists(tmpDir) {
		t.Error("DirExists should be true for a directory")
	}
	if DirExists(filepath.Join(tmpDir, "missing")) {
		t.Error("DirExists should be false for a missing path")
	}
}
