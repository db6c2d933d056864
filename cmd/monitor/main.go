package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nbenliogludev/go-harm-monitor/internal/browser"
	"github.com/nbenliogludev/go-harm-monitor/internal/config"
	"github.com/nbenliogludev/go-harm-monitor/internal/llm"
	"github.com/nbenliogludev/go-harm-monitor/internal/monitor"
	"github.com/nbenliogludev/go-harm-monitor/internal/store"
)

type cliFlags struct {
	config           string
	gameURL          string
	useCDP           bool
	cdpURL           string
	gameplay         string
	model            string
	shotInterval     float64
	detectorInterval float64
	timeout          float64
	gameSource       string
	screenshotsDir   string
	archive          string
	judge            bool
}

func newRootCmd() (*cobra.Command, *cliFlags) {
	fl := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Play the basketball game while detecting and closing harmful content modals",
		Long: `monitor drives a browser against the canvas basketball game, keeps the game
moving with periodic shots, and concurrently screenshots the page looking for
harmful content modals. Each modal is classified (violence, drugs, sexual),
reported once per category, and closed. The run ends when all three types
have been seen or the detector times out.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fl)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.config, "config", "", "path to yaml config file")
	f.StringVar(&fl.gameURL, "game-url", "", "game server URL")
	f.BoolVar(&fl.useCDP, "use-cdp", false, "attach over CDP instead of launching playwright")
	f.StringVar(&fl.cdpURL, "cdp-url", "", "CDP endpoint when --use-cdp is set")
	f.StringVar(&fl.gameplay, "gameplay", "", "gameplay driver: timed or llm")
	f.StringVar(&fl.model, "model", "", "OpenAI model name")
	f.Float64Var(&fl.shotInterval, "shot-interval", 0, "seconds between play actions")
	f.Float64Var(&fl.detectorInterval, "detector-interval", 0, "seconds between detection checks")
	f.Float64Var(&fl.timeout, "timeout", 0, "detector timeout in seconds")
	f.StringVar(&fl.gameSource, "game-source", "", "game source file or directory (llm gameplay)")
	f.StringVar(&fl.screenshotsDir, "screenshots-dir", "", "directory for detection screenshots")
	f.StringVar(&fl.archive, "archive", "", "sqlite file for the detection archive")
	f.BoolVar(&fl.judge, "judge", true, "run the LLM judge after the monitoring run")
	return cmd, fl
}

func loadConfig(cmd *cobra.Command, fl *cliFlags) (config.Config, error) {
	cfg, err := config.Load(fl.config)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()

	set := cmd.Flags().Changed
	if set("game-url") {
		cfg.GameURL = fl.gameURL
	}
	if set("use-cdp") {
		cfg.UseCDP = fl.useCDP
	}
	if set("cdp-url") {
		cfg.CDPURL = fl.cdpURL
	}
	if set("gameplay") {
		cfg.Gameplay = fl.gameplay
	}
	if set("model") {
		cfg.Model = fl.model
	}
	if set("shot-interval") {
		cfg.ShotIntervalSec = fl.shotInterval
	}
	if set("detector-interval") {
		cfg.DetectorIntervalSec = fl.detectorInterval
	}
	if set("timeout") {
		cfg.TimeoutSec = fl.timeout
	}
	if set("game-source") {
		cfg.GameSourcePath = fl.gameSource
	}
	if set("screenshots-dir") {
		cfg.ScreenshotsDir = fl.screenshotsDir
	}
	if set("archive") {
		cfg.ArchivePath = fl.archive
	}
	if set("judge") {
		cfg.Judge = fl.judge
	}
	return cfg, cfg.Validate()
}

// checkGameServer fails fast when the game is not being served, with a hint
// instead of a bare connection error.
func checkGameServer(url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("game server is not reachable at %s (start it with: ./start_game.sh): %w", url, err)
	}
	resp.Body.Close()
	return nil
}

func openSession(cfg config.Config) (browser.Session, error) {
	if cfg.UseCDP {
		return browser.NewCDPSession(cfg.CDPURL)
	}
	return browser.NewManager()
}

func run(cmd *cobra.Command, fl *cliFlags) error {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd, fl)
	if err != nil {
		return err
	}
	if err := checkGameServer(cfg.GameURL); err != nil {
		return err
	}

	llmClient, err := llm.NewOpenAIClient(cfg.Model, cfg.LLMTimeout())
	if err != nil {
		return fmt.Errorf("create OpenAI client: %w", err)
	}

	fmt.Println("🎮 Starting harmful content monitor...")
	session, err := openSession(cfg)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}
	defer session.Close()

	mcfg := monitor.Config{
		GameURL:          cfg.GameURL,
		Gameplay:         cfg.Gameplay,
		ShotInterval:     cfg.ShotInterval(),
		DetectorInterval: cfg.DetectorInterval(),
		RunTimeout:       cfg.RunTimeout(),
		GameLoadWait:     cfg.GameLoadWait(),
		StartClickWait:   cfg.StartClickWait(),
		ScreenshotsDir:   cfg.ScreenshotsDir,
		MaxRestarts:      cfg.MaxSessionRestarts,
	}

	if cfg.Gameplay == config.GameplayLLM {
		source, err := llm.ReadGameSource(cfg.GameSourcePath)
		if err != nil {
			return fmt.Errorf("read game source: %w", err)
		}
		instructions, err := llmClient.GenerateInstructions(source)
		if err != nil {
			return fmt.Errorf("generate play instructions: %w", err)
		}
		fmt.Printf("📖 Play instructions:\n%s\n", instructions)
		mcfg.Instructions = instructions
	}

	sig := monitor.NewSignalController()
	defer sig.Close()

	ctrl := monitor.New(session, llmClient, mcfg).WithSignals(sig)

	if cfg.ArchivePath != "" {
		archive, err := store.Open(cfg.ArchivePath)
		if err != nil {
			log.Printf("⚠️ Detection archive unavailable: %v", err)
		} else {
			defer archive.Close()
			ctrl.WithArchive(archive)
		}
	}

	ctx := context.Background()
	if err := ctrl.StartGame(ctx); err != nil {
		return err
	}
	fmt.Printf("▶️ Game started (run %s, %s gameplay).\n", ctrl.RunID(), cfg.Gameplay)

	state, runErr := ctrl.Run(ctx)
	summary := ctrl.Reporter().FinalSummary(ctrl.Ledger())
	fmt.Printf("Final state: %s\n", state)

	if cfg.Judge {
		req := monitor.BuildJudgeRequest(ctrl.Ledger(), summary)
		res, jerr := llmClient.Judge(req)
		ctrl.Reporter().JudgeVerdict(res, jerr)
	}

	if errors.Is(runErr, monitor.ErrInterrupted) {
		fmt.Println("⚠️ Interrupted by user.")
		return nil
	}
	return runErr
}

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Fatalf("monitor failed: %v", err)
	}
}
