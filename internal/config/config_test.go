package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_DB", "")
	t.Setenv("RECOMMEND_DEFAULT_K", "")
	t.Setenv("TRAINER_ADDRS", "")

	cfg := Load()
	if cfg.MongoDB != "biblioteca" {
		t.Errorf("MongoDB = %q, want biblioteca", cfg.MongoDB)
	}
	if cfg.DefaultClusters != 5 {
		t.Errorf("DefaultClusters = %d, want 5", cfg.DefaultClusters)
	}
	if cfg.RecCacheTTL != 10*time.Minute {
		t.Errorf("RecCacheTTL = %v, want 10m", cfg.RecCacheTTL)
	}
	if len(cfg.TrainerAddrs) != 0 {
		t.Errorf("TrainerAddrs = %v, want empty", cfg.TrainerAddrs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECOMMEND_DEFAULT_K", "8")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("TRAINER_ADDRS", " trainer1:9001, ,trainer2:9001 ")

	cfg := Load()
	if cfg.DefaultClusters != 8 {
		t.Errorf("DefaultClusters = %d, want 8", cfg.DefaultClusters)
	}
	if cfg.RecCacheTTL != 90*time.Second {
		t.Errorf("RecCacheTTL = %v, want 90s", cfg.RecCacheTTL)
	}
	want := []string{"trainer1:9001", "trainer2:9001"}
	if len(cfg.TrainerAddrs) != len(want) {
		t.Fatalf("TrainerAddrs = %v, want %v", cfg.TrainerAddrs, want)
	}
	for i := range want {
		if cfg.TrainerAddrs[i] != want[i] {
			t.Errorf("TrainerAddrs[%d] = %q, want %q", i, cfg.TrainerAddrs[i], want[i])
		}
	}
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("RECOMMEND_DEFAULT_K", "cinco")
	if got := getEnvInt("RECOMMEND_DEFAULT_K", 5); got != 5 {
		t.Errorf("getEnvInt = %d, want fallback 5", got)
	}
}
