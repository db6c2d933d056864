package e2e

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/nbenliogludev/go-harm-monitor/internal/browser"
	"github.com/nbenliogludev/go-harm-monitor/internal/config"
	"github.com/nbenliogludev/go-harm-monitor/internal/llm"
	"github.com/nbenliogludev/go-harm-monitor/internal/monitor"
)

// Real end-to-end run: opens Chromium, plays the basketball game and expects
// all three harmful content modals to be detected, reported, and closed.
// Needs the game server running locally and a real OpenAI key.
func TestMonitorFullRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("OPENAI_API_KEY not set, skipping e2e test")
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(cfg.GameURL)
	if err != nil {
		t.Skipf("game server not reachable at %s: %v", cfg.GameURL, err)
	}
	resp.Body.Close()

	mgr, err := browser.NewManager()
	if err != nil {
		t.Fatalf("failed to start browser: %v", err)
	}
	defer mgr.Close()

	llmClient, err := llm.NewOpenAIClient(cfg.Model, cfg.LLMTimeout())
	if err != nil {
		t.Fatalf("failed to create OpenAI client: %v", err)
	}

	ctrl := monitor.New(mgr, llmClient, monitor.Config{
		GameURL:          cfg.GameURL,
		Gameplay:         config.GameplayTimed,
		ShotInterval:     cfg.ShotInterval(),
		DetectorInterval: cfg.DetectorInterval(),
		RunTimeout:       cfg.RunTimeout(),
		GameLoadWait:     cfg.GameLoadWait(),
		StartClickWait:   cfg.StartClickWait(),
		ScreenshotsDir:   t.TempDir(),
		MaxRestarts:      cfg.MaxSessionRestarts,
	})

	ctx := context.Background()
	if err := ctrl.StartGame(ctx); err != nil {
		t.Fatalf("failed to start game: %v", err)
	}

	state, err := ctrl.Run(ctx)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	summary := ctrl.Reporter().FinalSummary(ctrl.Ledger())
	t.Logf("final state: %s\n%s", state, summary)

	if state != monitor.StateComplete {
		t.Fatalf("expected a complete run, got %s (missing: %v)", state, ctrl.Ledger().Remaining())
	}
}
