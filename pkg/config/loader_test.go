package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	yamlText := `
log_level: info
models: [flu]
run:
  scenarios: 50
  seed: 7
evaluator:
  type: sequential
`
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("failed to write setup file: %v", err)
	}

	setup, err := LoadSetup(path)
	if err != nil {
		t.Fatalf("Failed to load setup: %v", err)
	}
	if setup.Run == nil || setup.Run.Scenarios != 50 {
		t.Errorf("Expected 50 scenarios, got %+v", setup.Run)
	}
	if setup.Run.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", setup.Run.Seed)
	}
}

func TestLoadSetupMissingFile(t *testing.T) {
	if _, err := LoadSetup("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
