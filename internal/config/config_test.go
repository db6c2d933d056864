package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.GameURL != "http://localhost:8080" {
		t.Fatalf("game url = %q", cfg.GameURL)
	}
	if cfg.RunTimeout() != 120*time.Second {
		t.Fatalf("timeout = %v", cfg.RunTimeout())
	}
	if cfg.GameLoadWait() != 3500*time.Millisecond {
		t.Fatalf("game load wait = %v", cfg.GameLoadWait())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	body := "game_url: http://localhost:9000\nshot_interval_sec: 1.5\ngameplay: llm\ngame_source: ./game\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GameURL != "http://localhost:9000" {
		t.Fatalf("game url = %q", cfg.GameURL)
	}
	if cfg.ShotInterval() != 1500*time.Millisecond {
		t.Fatalf("shot interval = %v", cfg.ShotInterval())
	}
	// untouched keys keep their defaults
	if cfg.DetectorIntervalSec != 2 {
		t.Fatalf("detector interval = %v", cfg.DetectorIntervalSec)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv("GAME_URL", "http://game.test:1234")
	t.Setenv("USE_CDP", "TRUE")
	t.Setenv("DETECTOR_TIMEOUT_SEC", "45")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.GameURL != "http://game.test:1234" {
		t.Fatalf("game url = %q", cfg.GameURL)
	}
	if !cfg.UseCDP {
		t.Fatal("USE_CDP=TRUE must enable CDP mode")
	}
	if cfg.RunTimeout() != 45*time.Second {
		t.Fatalf("timeout = %v", cfg.RunTimeout())
	}
}

func TestValidateRejectsBadGameplay(t *testing.T) {
	cfg := Default()
	cfg.Gameplay = "agentic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown gameplay mode")
	}

	cfg = Default()
	cfg.Gameplay = GameplayLLM
	if err := cfg.Validate(); err == nil {
		t.Fatal("llm gameplay without game_source must fail validation")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
