package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TICKD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TICKD_DATA_DIR", "")
	t.Setenv("TICKD_SYNC_URL", "")
	t.Setenv("TICKD_PRINCIPAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.TickMs != 100 {
		t.Errorf("TickMs = %d, want 100", cfg.UI.TickMs)
	}
	if cfg.Server.Addr != ":8787" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.SyncEnabled() {
		t.Error("sync enabled with no settings")
	}
	if cfg.Server.DBPath == "" {
		t.Error("DBPath default missing")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
data:
  dir: /tmp/tickd-test
sync:
  server_url: http://localhost:9999
  principal_id: alice
ui:
  tick_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TICKD_CONFIG_PATH", path)
	t.Setenv("TICKD_DATA_DIR", "")
	t.Setenv("TICKD_SYNC_URL", "")
	t.Setenv("TICKD_PRINCIPAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Dir != "/tmp/tickd-test" {
		t.Errorf("Data.Dir = %q", cfg.Data.Dir)
	}
	if !cfg.SyncEnabled() || cfg.Sync.PrincipalID != "alice" {
		t.Errorf("sync = %+v", cfg.Sync)
	}
	if cfg.UI.TickMs != 250 {
		t.Errorf("TickMs = %d, want 250", cfg.UI.TickMs)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("sync:\n  principal_id: alice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TICKD_CONFIG_PATH", path)
	t.Setenv("TICKD_PRINCIPAL", "bob")
	t.Setenv("TICKD_SYNC_URL", "http://example.test")
	t.Setenv("TICKD_SERVER_ADDR", ":9000")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sync.PrincipalID != "bob" {
		t.Errorf("PrincipalID = %q, want env override bob", cfg.Sync.PrincipalID)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TICKD_CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("malformed config loaded without error")
	}
}
