package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nbenliogludev/go-harm-monitor/internal/browser"
	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
	"github.com/nbenliogludev/go-harm-monitor/internal/llm"
)

// State of the coordination controller.
type State string

const (
	StateRunning        State = "RUNNING"
	StateModalSuspected State = "MODAL_SUSPECTED"
	StateComplete       State = "COMPLETE"
	StateTimedOut       State = "TIMED_OUT"
	StateFailed         State = "FAILED"
)

var (
	ErrInterrupted       = errors.New("run interrupted")
	ErrRestartsExhausted = errors.New("browser session restarts exhausted")
)

const defaultSettleAfterClose = time.Second

// Config is the controller's runtime tuning.
type Config struct {
	GameURL          string
	Gameplay         string // "timed" or "llm"
	Instructions     string // "how to play" brief, llm gameplay only
	ShotInterval     time.Duration
	DetectorInterval time.Duration
	RunTimeout       time.Duration
	GameLoadWait     time.Duration
	StartClickWait   time.Duration
	SettleAfterClose time.Duration
	ScreenshotsDir   string
	MaxRestarts      int
}

func (c Config) settleAfterClose() time.Duration {
	if c.SettleAfterClose > 0 {
		return c.SettleAfterClose
	}
	return defaultSettleAfterClose
}

// ArchiveSink receives confirmed detections for persistence. Failures are
// logged, never fatal.
type ArchiveSink interface {
	SaveDetection(runID string, rec detect.Record) error
}

// Controller runs the gameplay driver and the screenshot detector
// concurrently against one live page and owns all shared detection state.
type Controller struct {
	session  browser.Session
	llm      llm.Client
	resolver *browser.Resolver
	ledger   *detect.Ledger
	reporter *Reporter
	archive  ArchiveSink
	signals  *SignalController
	cfg      Config
	runID    string

	// modalOpen is the soft mutual-exclusion bit between the two loops:
	// while set, the player must not issue play clicks.
	modalOpen atomic.Bool

	mu       sync.Mutex
	state    State
	restarts int

	shotCount atomic.Int64
	step      int
}

func New(session browser.Session, llmClient llm.Client, cfg Config) *Controller {
	c := &Controller{
		session:  session,
		llm:      llmClient,
		resolver: browser.NewResolver(session.Page()),
		ledger:   detect.NewLedger(),
		reporter: NewReporter(os.Stdout),
		cfg:      cfg,
		runID:    uuid.NewString(),
		state:    StateRunning,
	}
	return c
}

// WithArchive attaches an optional detection archive.
func (c *Controller) WithArchive(a ArchiveSink) *Controller {
	c.archive = a
	return c
}

// WithReporter overrides the console reporter (tests).
func (c *Controller) WithReporter(r *Reporter) *Controller {
	c.reporter = r
	return c
}

// WithSignals attaches Ctrl+C handling, observed at loop boundaries.
func (c *Controller) WithSignals(s *SignalController) *Controller {
	c.signals = s
	return c
}

func (c *Controller) Ledger() *detect.Ledger { return c.ledger }
func (c *Controller) Reporter() *Reporter    { return c.reporter }
func (c *Controller) RunID() string          { return c.runID }

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// CurrentState returns the controller state.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartGame navigates to the game and clicks through the start screen. Also
// used to rejoin the game after a session restart.
func (c *Controller) StartGame(ctx context.Context) error {
	page := c.session.Page()
	if err := page.Navigate(c.cfg.GameURL); err != nil {
		return fmt.Errorf("navigate to game: %w", err)
	}
	sleepCtx(ctx, c.cfg.GameLoadWait)

	cx, cy := c.resolver.Center()
	if err := page.Click(cx, cy); err != nil {
		return fmt.Errorf("start click: %w", err)
	}
	sleepCtx(ctx, c.cfg.StartClickWait)
	return nil
}

// Run drives both loops until every category is detected, the run times
// out, or a fatal error surfaces. It always returns a terminal state; err is
// non-nil only for the two fatal classes (exhausted restarts, interrupt).
func (c *Controller) Run(ctx context.Context) (State, error) {
	player := c.newPlayer()

	playerCtx, stopPlayer := context.WithCancel(ctx)
	defer stopPlayer()

	detectorCtx, cancelDetector := context.WithTimeout(ctx, c.cfg.RunTimeout)
	defer cancelDetector()

	playerDone := make(chan struct{})
	go func() {
		defer close(playerDone)
		c.playerLoop(playerCtx, player)
	}()

	err := c.detectorLoop(detectorCtx)

	// Close-then-resume also applies at teardown: stop the player and give
	// it a bounded grace period before touching the browser.
	stopPlayer()
	select {
	case <-playerDone:
	case <-time.After(5 * time.Second):
		log.Printf("⚠️ Player loop did not stop within grace period")
	}

	switch {
	case c.ledger.IsComplete():
		c.setState(StateComplete)
		return StateComplete, nil
	case errors.Is(err, ErrInterrupted):
		c.setState(StateFailed)
		return StateFailed, ErrInterrupted
	case err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled):
		c.setState(StateFailed)
		return StateFailed, err
	case errors.Is(detectorCtx.Err(), context.DeadlineExceeded):
		fmt.Println("\n⏱️ Detector timeout reached.")
		c.setState(StateTimedOut)
		return StateTimedOut, nil
	default:
		c.setState(StateTimedOut)
		return StateTimedOut, nil
	}
}

func (c *Controller) newPlayer() Player {
	if c.cfg.Gameplay == "llm" {
		return &LLMPlayer{
			session:      c.session,
			llm:          c.llm,
			resolver:     c.resolver,
			instructions: c.cfg.Instructions,
			progress:     c.progressLine,
			modalCheck:   c.classifyStrict,
			modalOpen:    &c.modalOpen,
		}
	}
	return &TimedPlayer{
		session:  c.session,
		resolver: c.resolver,
		started:  time.Now(),
	}
}

// playerLoop issues one play action per shot interval, idling while the
// detector believes a modal is open. Player failures are logged and the loop
// keeps going; only cancellation stops it.
func (c *Controller) playerLoop(ctx context.Context, player Player) {
	for {
		if c.interrupted() {
			return
		}
		if !c.modalOpen.Load() {
			if err := player.PlayOnce(ctx); err != nil {
				log.Printf("  ⚠️ Player (%s) failed: %v", player.Name(), err)
			} else {
				c.reporter.ShotFired(int(c.shotCount.Add(1)))
			}
		}
		if !sleepCtx(ctx, c.cfg.ShotInterval) {
			return
		}
	}
}

// detectorLoop runs the screenshot -> classify -> normalize -> record ->
// close cycle until the ledger is complete or the context ends.
func (c *Controller) detectorLoop(ctx context.Context) error {
	for {
		if c.ledger.IsComplete() {
			fmt.Println("  👁️ Detector: all 3 types found, stopping checks.")
			return nil
		}
		if c.interrupted() {
			return ErrInterrupted
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.detectorCycle(ctx); err != nil {
			return err
		}
		if !sleepCtx(ctx, c.cfg.DetectorInterval) {
			return ctx.Err()
		}
	}
}

// detectorCycle performs one detection check. Returns an error only for the
// fatal class (restarts exhausted); everything else is absorbed and logged.
func (c *Controller) detectorCycle(ctx context.Context) error {
	c.step++
	page := c.session.Page()
	closeX, closeY := c.resolver.CloseButtonPoint()

	fmt.Println("  👁️ Detector check (screenshot → LLM)...")

	shot, err := page.Screenshot()
	if err != nil {
		return c.handleAutomationError(ctx, err)
	}

	verdict := c.classify(shot)
	if !verdict.HasModal {
		c.leaveModalState()
		c.reporter.StepLog(c.step,
			"No harmful content modal in screenshot.",
			"",
			"Continue shooting and check again on next cycle.")
		return nil
	}

	// Suspected modal: park the player until the close click has landed.
	c.modalOpen.Store(true)
	c.setState(StateModalSuspected)

	remaining := c.ledger.Remaining()
	category, resolved := detect.Normalize(verdict.RawType, verdict.RawLabel, verdict.ModalText, remaining)

	// Collision with an already-counted category while exactly one remains
	// usually means the combined gameplay+detection reply was noisy; ask
	// once more in strict detection-only mode before accepting it.
	if resolved && c.ledger.Detected(category) && len(remaining) == 1 {
		c.reporter.StepLog(c.step,
			fmt.Sprintf("Verdict says '%s' but that category is already closed; rechecking in strict mode.", category),
			"", "")
		if strict := c.classifyStrict(shot); strict.HasModal {
			if cat2, ok2 := detect.Normalize(strict.RawType, strict.RawLabel, strict.ModalText, remaining); ok2 {
				category, resolved = cat2, true
				if strict.ModalText != "" {
					verdict.ModalText = strict.ModalText
				}
			} else {
				resolved = false
			}
		}
	}

	if !resolved {
		// Deliberately favor a missed detection over a wrong one: close the
		// modal so the game moves on and try again on a later cycle.
		c.reporter.StepLog(c.step,
			"Modal present but category unresolved; closing without recording.",
			"", "Retry on next check.")
		c.closeModal(ctx, page, verdict, closeX, closeY)
		return nil
	}

	rec := detect.NewRecord(category, verdict, time.Now())
	if c.ledger.RecordIfNew(rec) {
		if path, err := c.saveScreenshot(shot); err != nil {
			log.Printf("     ⚠️ Failed to save screenshot: %v", err)
		} else {
			c.ledger.SetScreenshotPath(category, path)
			rec.ScreenshotPath = path
			fmt.Printf("     📸 Saved screenshot: %s\n", path)
		}
		c.archiveDetection(rec)
		c.reporter.DetectionBlock(rec)
		c.reporter.StepLog(c.step,
			fmt.Sprintf("Successfully reported the '%s' modal and closed it by clicking the Close button. Verdict: Success", rec.Label),
			c.progressLine(),
			c.nextGoalLine())
	} else {
		c.reporter.StepLog(c.step,
			fmt.Sprintf("Modal (%s) already counted for this type. Closing it so next modal can appear.", category),
			fmt.Sprintf("%d out of 3 types detected so far.", c.ledger.Count()),
			"Continue shooting to trigger remaining modal(s).")
	}

	c.closeModal(ctx, page, verdict, closeX, closeY)
	return nil
}

// closeModal dispatches the close click, waits for the game to process it,
// and only then lets the player resume. Strictly ordered: a play click must
// never race a modal mid-close.
func (c *Controller) closeModal(ctx context.Context, page browser.Page, verdict detect.Verdict, closeX, closeY int) {
	x, y := closeX, closeY
	if verdict.CloseHint != nil {
		// Classifier-located close button beats the heuristic point.
		x, y = verdict.CloseHint.X, verdict.CloseHint.Y
	}
	if err := page.Click(x, y); err != nil {
		log.Printf("     ⚠️ Close click failed: %v", err)
	} else {
		fmt.Println("     ✓ Clicked Close.")
	}
	sleepCtx(ctx, c.cfg.settleAfterClose())
	c.leaveModalState()
}

func (c *Controller) leaveModalState() {
	c.modalOpen.Store(false)
	if c.ledger.IsComplete() {
		c.setState(StateComplete)
	} else {
		c.setState(StateRunning)
	}
}

// handleAutomationError recovers from timeout-shaped browser errors with a
// bounded number of full session restarts. Anything else is logged and the
// cycle is skipped.
func (c *Controller) handleAutomationError(ctx context.Context, err error) error {
	if !browser.IsTimeoutError(err) {
		c.reporter.StepLog(c.step, fmt.Sprintf("Detector error: %v", err), "", "Retry on next check.")
		return nil
	}
	if c.restarts >= c.cfg.MaxRestarts {
		return fmt.Errorf("%w: last error: %v", ErrRestartsExhausted, err)
	}
	c.restarts++
	log.Printf("  ♻️ Automation timeout (%v); restarting browser session (%d/%d)...",
		err, c.restarts, c.cfg.MaxRestarts)
	if rerr := c.session.Restart(); rerr != nil {
		return fmt.Errorf("%w: restart failed: %v", ErrRestartsExhausted, rerr)
	}
	if serr := c.StartGame(ctx); serr != nil {
		log.Printf("  ⚠️ Rejoin after restart failed: %v", serr)
	}
	return nil
}

func (c *Controller) archiveDetection(rec detect.Record) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveDetection(c.runID, rec); err != nil {
		log.Printf("     ⚠️ Failed to archive detection: %v", err)
	}
}

// saveScreenshot persists one detection screenshot with a timestamped,
// sequence-numbered name.
func (c *Controller) saveScreenshot(png []byte) (string, error) {
	dir := c.cfg.ScreenshotsDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("harmful_content_%s_%d.png", time.Now().Format("20060102_150405"), c.ledger.Count())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Controller) progressLine() string {
	detected := c.ledger.DetectedCategories()
	if len(detected) == 0 {
		return "0 out of 3 harmful content modals have been detected."
	}
	return fmt.Sprintf("%d out of 3 harmful content modals (%s) have been detected, reported, and closed.",
		len(detected), joinLabels(detected))
}

func (c *Controller) nextGoalLine() string {
	remaining := c.ledger.Remaining()
	if len(remaining) == 0 {
		return "All 3 types detected. Task complete."
	}
	return fmt.Sprintf("Shoot to trigger the next modal. Still need: %s.", joinLabels(remaining))
}

func (c *Controller) interrupted() bool {
	return c.signals != nil && c.signals.Interrupted()
}

// sleepCtx waits for d or until ctx is done; returns false when cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
