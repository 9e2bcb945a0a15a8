package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/meshsurgery
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "meshsurgery")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(base, "meshsurgery"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", "meshsurgery", "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}

	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	path, err = configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "meshsurgery", "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
