package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("POR_TEST_LOAD_ENV=from-file\nPOR_TEST_LOAD_INT=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("POR_TEST_LOAD_ENV")
		os.Unsetenv("POR_TEST_LOAD_INT")
	})

	if err := LoadEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := GetEnvOrDefault("POR_TEST_LOAD_ENV", "default"); got != "from-file" {
		t.Fatalf("GetEnvOrDefault = %q", got)
	}
	if got := GetEnvIntOrDefault("POR_TEST_LOAD_INT", 0); got != 42 {
		t.Fatalf("GetEnvIntOrDefault = %d", got)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("POR_TEST_EMPTY", "")
	t.Setenv("POR_TEST_BAD_INT", "sixty")
	t.Setenv("POR_TEST_BOOL", "true")

	if got := GetEnvOrDefault("POR_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Errorf("empty value should fall back, got %q", got)
	}
	if got := GetEnvIntOrDefault("POR_TEST_BAD_INT", 60); got != 60 {
		t.Errorf("unparseable int should fall back, got %d", got)
	}
	if !GetEnvBoolOrDefault("POR_TEST_BOOL", false) {
		t.Error("expected true")
	}
	if GetEnvBoolOrDefault("POR_TEST_UNSET_BOOL", false) {
		t.Error("expected default false")
	}
}
