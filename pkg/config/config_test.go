package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
polygon:
  api_key: key
  symbols: [AAPL, TSLA]
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DarkPool.VenueID != 4 {
		t.Fatalf("venue id %d", cfg.DarkPool.VenueID)
	}
	if cfg.DarkPool.ActivityThresholdPercent != 300 {
		t.Fatalf("threshold %v", cfg.DarkPool.ActivityThresholdPercent)
	}
	if cfg.DarkPool.LookbackDays != 90 {
		t.Fatalf("lookback %d", cfg.DarkPool.LookbackDays)
	}
	if cfg.DarkPool.OpportunityTTL != 24*time.Hour {
		t.Fatalf("ttl %v", cfg.DarkPool.OpportunityTTL)
	}
	if cfg.Ingest.Type != "websocket" {
		t.Fatalf("ingest %q", cfg.Ingest.Type)
	}
}

func TestLoadRejectsBadIngest(t *testing.T) {
	body := minimalConfig + "\ningest:\n  type: carrier-pigeon\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadKafkaIngestRequiresBrokers(t *testing.T) {
	body := "environment: test\ningest:\n  type: kafka\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected broker validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("DARK_POOL_VENUE_ID", "9")
	t.Setenv("SYMBOLS", "NVDA,AMD")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DarkPool.VenueID != 9 {
		t.Fatalf("venue id %d want 9", cfg.DarkPool.VenueID)
	}
	if len(cfg.Polygon.Symbols) != 2 || cfg.Polygon.Symbols[0] != "NVDA" {
		t.Fatalf("symbols %v", cfg.Polygon.Symbols)
	}
}
