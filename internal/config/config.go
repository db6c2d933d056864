package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Gameplay modes.
const (
	GameplayTimed = "timed"
	GameplayLLM   = "llm"
)

// Config holds all recognized runtime options. Precedence, lowest to
// highest: defaults, yaml file, environment, CLI flags.
type Config struct {
	GameURL  string `yaml:"game_url"`
	UseCDP   bool   `yaml:"use_cdp"`
	CDPURL   string `yaml:"cdp_url"`
	Gameplay string `yaml:"gameplay"`
	Model    string `yaml:"model"`

	ShotIntervalSec     float64 `yaml:"shot_interval_sec"`
	DetectorIntervalSec float64 `yaml:"detector_interval_sec"`
	TimeoutSec          float64 `yaml:"timeout_sec"`
	LLMTimeoutSec       float64 `yaml:"llm_timeout_sec"`
	GameLoadWaitSec     float64 `yaml:"game_load_wait_sec"`
	StartClickWaitSec   float64 `yaml:"start_click_wait_sec"`

	ScreenshotsDir     string `yaml:"screenshots_dir"`
	GameSourcePath     string `yaml:"game_source"`
	ArchivePath        string `yaml:"archive_path"`
	Judge              bool   `yaml:"judge"`
	MaxSessionRestarts int    `yaml:"max_session_restarts"`
}

// Default mirrors the tuning the monitor ships with.
func Default() Config {
	return Config{
		GameURL:             "http://localhost:8080",
		CDPURL:              "http://localhost:9222",
		Gameplay:            GameplayTimed,
		ShotIntervalSec:     3,
		DetectorIntervalSec: 2,
		TimeoutSec:          120,
		LLMTimeoutSec:       15,
		GameLoadWaitSec:     3.5,
		StartClickWaitSec:   1.5,
		ScreenshotsDir:      "screenshots",
		Judge:               true,
		MaxSessionRestarts:  2,
	}
}

// Load reads the yaml file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays recognized environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GAME_URL"); v != "" {
		c.GameURL = v
	}
	if v := os.Getenv("USE_CDP"); v != "" {
		c.UseCDP = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CDP_URL"); v != "" {
		c.CDPURL = v
	}
	if v := os.Getenv("GAMEPLAY_MODE"); v != "" {
		c.Gameplay = strings.ToLower(v)
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("GAME_SOURCE"); v != "" {
		c.GameSourcePath = v
	}
	if v := os.Getenv("SCREENSHOTS_DIR"); v != "" {
		c.ScreenshotsDir = v
	}
	if v := os.Getenv("ARCHIVE_PATH"); v != "" {
		c.ArchivePath = v
	}
	if v := os.Getenv("DETECTOR_TIMEOUT_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.TimeoutSec = f
		}
	}
}

func (c Config) Validate() error {
	if c.GameURL == "" {
		return fmt.Errorf("game_url is required")
	}
	switch c.Gameplay {
	case GameplayTimed, GameplayLLM:
	default:
		return fmt.Errorf("gameplay must be %q or %q, got %q", GameplayTimed, GameplayLLM, c.Gameplay)
	}
	if c.Gameplay == GameplayLLM && c.GameSourcePath == "" {
		return fmt.Errorf("llm gameplay needs game_source to generate play instructions")
	}
	if c.ShotIntervalSec <= 0 || c.DetectorIntervalSec <= 0 || c.TimeoutSec <= 0 {
		return fmt.Errorf("intervals and timeout must be positive")
	}
	return nil
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func (c Config) ShotInterval() time.Duration     { return seconds(c.ShotIntervalSec) }
func (c Config) DetectorInterval() time.Duration { return seconds(c.DetectorIntervalSec) }
func (c Config) RunTimeout() time.Duration       { return seconds(c.TimeoutSec) }
func (c Config) LLMTimeout() time.Duration       { return seconds(c.LLMTimeoutSec) }
func (c Config) GameLoadWait() time.Duration     { return seconds(c.GameLoadWaitSec) }
func (c Config) StartClickWait() time.Duration   { return seconds(c.StartClickWaitSec) }
