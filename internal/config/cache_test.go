package config

import (
    "testing"
    "time"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
    for _, k := range []string{"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES"} {
        t.Setenv(k, "")
    }
    cfg := LoadCacheConfig()
    if !cfg.Enabled {
        t.Fatal("cache disabled by default")
    }
    if !cfg.Methods["GET"] {
        t.Fatal("GET not cached by default")
    }
    // The board changes with every check-in; entries stay short-lived.
    if cfg.TTL != 15*time.Second {
        t.Fatalf("ttl = %v, want 15s", cfg.TTL)
    }
    if cfg.Prefix != "board" {
        t.Fatalf("prefix = %q, want board", cfg.Prefix)
    }
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_PREFIX", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY"} {
        t.Setenv(k, "")
    }
    cfg := LoadRateLimitConfig()
    if cfg.Capacity != 120 {
        t.Fatalf("capacity = %d, want 120", cfg.Capacity)
    }
    if cfg.Prefix != "exam-rl" {
        t.Fatalf("prefix = %q, want exam-rl", cfg.Prefix)
    }
}
