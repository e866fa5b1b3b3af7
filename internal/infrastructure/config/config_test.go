package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".shuttle"), 0700); err != nil {
		t.Fatalf("mkdir .shuttle: %v", err)
	}

	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config for missing file")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".shuttle"), 0700); err != nil {
		t.Fatalf("mkdir .shuttle: %v", err)
	}

	input := Default()
	input.Git.CommitPrefix = "shuttle:"
	input.Apply.AutoConfirmOverwrites = true
	if err := Save(tempDir, input); err != nil {
		t.Fatalf("save config: %v", err)
	}

	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected config")
	}
	if cfg.Git.CommitPrefix != "shuttle:" {
		t.Fatalf("CommitPrefix = %q", cfg.Git.CommitPrefix)
	}
	if !cfg.Apply.AutoConfirmOverwrites {
		t.Fatal("expected AutoConfirmOverwrites to survive the round trip")
	}
	if cfg.Apply.WatchDebounceMS != 500 {
		t.Fatalf("WatchDebounceMS = %d", cfg.Apply.WatchDebounceMS)
	}
	if len(cfg.Context.Excludes) == 0 {
		t.Fatal("expected default excludes to survive the round trip")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tempDir := t.TempDir()
	storeDir := filepath.Join(tempDir, ".shuttle")
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		t.Fatalf("mkdir .shuttle: %v", err)
	}

	badPath := filepath.Join(storeDir, "config.yaml")
	if err := os.WriteFile(badPath, []byte("::bad"), 0600); err != nil {
		t.Fatalf("write bad config: %v", err)
	}

	_, err := Load(tempDir)
	if err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

func TestDefaultExcludesShuttleStore(t *testing.T) {
	found := false
	for _, pattern := range Default().Context.Excludes {
		if pattern == ".shuttle" {
			found = true
		}
	}
	if !found {
		t.Error("default excludes must prune the .shuttle store")
	}
}
