package config

import (
	"testing"
	"time"
)

func TestLoadAppDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_UPLOAD_MB", "CLASSIFY_WORKERS", "ADMIN_TOKEN_TTL", "CACHE_TTL", "ARCHIVE_DIR", "RULES_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Port != "8080" || cfg.MaxUploadBytes != 10<<20 || cfg.ClassifyWorkers != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 12*time.Hour || cfg.ArchiveDir != "./backup" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadAppOverridesAndErrors(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CLASSIFY_WORKERS", "many")

	cfg, err := LoadApp()
	if err == nil {
		t.Fatal("expected error for CLASSIFY_WORKERS")
	}
	if cfg.MaxUploadBytes != 2<<20 || cfg.CacheTTL != 30*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
