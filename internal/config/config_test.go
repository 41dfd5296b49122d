package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sprites.MemoryEntries != 64 {
		t.Errorf("expected default memory_entries 64, got %d", cfg.Sprites.MemoryEntries)
	}
	if cfg.PokeAPI.RequestsPerSecond != 4 {
		t.Errorf("expected default rps 4, got %d", cfg.PokeAPI.RequestsPerSecond)
	}
	if cfg.Input.Backend != "keyboard" {
		t.Errorf("expected keyboard backend, got %q", cfg.Input.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
}

func TestLoadParsesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
database:
  path: /tmp/dex.db
pokeapi:
  timeout: 5s
input:
  backend: gpio
  gpio_pins:
    up: 17
    down: 27
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/dex.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.PokeAPI.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.PokeAPI.Timeout)
	}
	if cfg.Input.GPIOPins["up"] != 17 {
		t.Errorf("gpio pin up = %d", cfg.Input.GPIOPins["up"])
	}
	// untouched sections still get defaults
	if cfg.Sprites.DiskLimitMB != 256 {
		t.Errorf("disk_limit_mb = %d", cfg.Sprites.DiskLimitMB)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for version 99")
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("PIDEX_TEST_DIR", "/data/pidex")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\ndatabase:\n  path: ${PIDEX_TEST_DIR}/dex.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/data/pidex/dex.db" {
		t.Errorf("expected expanded path, got %q", cfg.Database.Path)
	}
}

func TestEnvExpansionUnsetLeftAlone(t *testing.T) {
	got := expandEnv("${PIDEX_DEFINITELY_UNSET_VAR}/x")
	if got != "${PIDEX_DEFINITELY_UNSET_VAR}/x" {
		t.Errorf("unset var should be left verbatim, got %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := &Config{Version: CurrentVersion}
	cfg.Database.Path = "/tmp/roundtrip.db"
	cfg.UI.SpriteWidth = 32
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Database.Path != "/tmp/roundtrip.db" {
		t.Errorf("path = %q", loaded.Database.Path)
	}
	if loaded.UI.SpriteWidth != 32 {
		t.Errorf("sprite width = %d", loaded.UI.SpriteWidth)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Input.Backend = "joystick"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "joystick") {
		t.Errorf("expected unknown backend error, got %v", err)
	}

	cfg.Input.Backend = "gpio"
	cfg.Input.GPIOPins = nil
	if err := cfg.Validate(); err == nil {
		t.Error("gpio backend without pins should fail validation")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := ExpandHome("~/.pidex/pidex.db")
	if got != filepath.Join(home, ".pidex/pidex.db") {
		t.Errorf("ExpandHome = %q", got)
	}
	if ExpandHome("/abs/path") != "/abs/path" {
		t.Error("absolute path should pass through")
	}
}
