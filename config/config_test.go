package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	writeConfig(t, "http:\n  addr: \":3000\"\n")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Service != "collab-service" {
		t.Fatalf("service default missing, got %q", cfg.Logging.Service)
	}
	if cfg.WS.PingInterval != 30*time.Second {
		t.Fatalf("ping default missing, got %v", cfg.WS.PingInterval)
	}
	if cfg.WS.ReadLimit != 100<<20 {
		t.Fatalf("read limit default missing, got %d", cfg.WS.ReadLimit)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Fatalf("cors default missing, got %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoadConfig_AddrRequired(t *testing.T) {
	writeConfig(t, "logging:\n  env: dev\n")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing http.addr")
	}
}
