package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s", cfg.HTTPPort)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %s, want 1h", cfg.CacheTTL)
	}
	if cfg.LockTimeout != 3*time.Second {
		t.Errorf("LockTimeout = %s, want 3s", cfg.LockTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("LOCK_TIMEOUT_MS", "500")
	t.Setenv("RATE_RPS", "not-a-number")

	cfg := Load()
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %s, want 1m", cfg.CacheTTL)
	}
	if cfg.LockTimeout != 500*time.Millisecond {
		t.Errorf("LockTimeout = %s, want 500ms", cfg.LockTimeout)
	}
	if cfg.RateRPS != 100 {
		t.Errorf("RateRPS = %d, want default 100 on parse failure", cfg.RateRPS)
	}
}
