package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nbenliogludev/go-harm-monitor/internal/browser"
	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
	"github.com/nbenliogludev/go-harm-monitor/internal/llm"
)

// Player issues one gameplay action per cadence tick.
type Player interface {
	Name() string
	PlayOnce(ctx context.Context) error
}

// TimedPlayer shoots on a fixed cadence at a jittered point near the hoop.
// The jitter is deterministic in elapsed time, so the game still registers
// distinct clicks without any randomness source.
type TimedPlayer struct {
	session  browser.Session
	resolver *browser.Resolver
	started  time.Time
}

func (p *TimedPlayer) Name() string { return "timed" }

func (p *TimedPlayer) PlayOnce(ctx context.Context) error {
	cx, cy := p.resolver.Center()
	t := int(time.Since(p.started).Seconds())
	x := cx + (t*10)%40 - 20
	y := max(100, cy-80+(t*7)%30-15)
	return p.session.Page().Click(x, y)
}

// closePointGuardRadius is how near (in px) to the modal close point an
// LLM-chosen click must be before it gets a confirmation recheck.
const closePointGuardRadius = 60

// LLMPlayer lets the model choose each action from a screenshot plus the
// gameplay brief. A decision error is never fatal: it just means no action
// this cycle.
type LLMPlayer struct {
	session      browser.Session
	llm          llm.Client
	resolver     *browser.Resolver
	instructions string
	progress     func() string
	modalCheck   func(shot []byte) detect.Verdict
	modalOpen    *atomic.Bool
}

func (p *LLMPlayer) Name() string { return "llm" }

func (p *LLMPlayer) PlayOnce(ctx context.Context) error {
	if p.modalOpen.Load() {
		return nil
	}
	page := p.session.Page()
	shot, err := page.Screenshot()
	if err != nil {
		return fmt.Errorf("gameplay screenshot: %w", err)
	}

	action, err := p.llm.DecideGameAction(llm.GameActionInput{
		Instructions:  p.instructions,
		Progress:      p.progress(),
		ScreenshotPNG: shot,
	})
	if err != nil {
		return fmt.Errorf("decide game action: %w", err)
	}

	switch action.Type {
	case llm.ActionClick:
		// A play click near the close point while the model claims no modal
		// is visible is the one race worth a second opinion: a modal may
		// have appeared between the screenshot and now. If it has, yield to
		// the detector instead of eating the modal's close click.
		if p.nearClosePoint(action.X, action.Y) && !action.ModalVisible {
			if fresh, ferr := page.Screenshot(); ferr == nil {
				if v := p.modalCheck(fresh); v.HasModal {
					fmt.Println("  🏀 Player yielding: modal appeared under the planned click.")
					return nil
				}
			}
		}
		return page.Click(action.X, action.Y)
	case llm.ActionWait:
		secs := action.Seconds
		if secs <= 0 || secs > 5 {
			secs = 1
		}
		sleepCtx(ctx, time.Duration(secs*float64(time.Second)))
		return nil
	case llm.ActionDone:
		// The model thinks gameplay is over; the detector still decides when
		// the run is actually complete.
		return nil
	default:
		return fmt.Errorf("unknown game action %q", action.Type)
	}
}

func (p *LLMPlayer) nearClosePoint(x, y int) bool {
	cx, cy := p.resolver.CloseButtonPoint()
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= closePointGuardRadius*closePointGuardRadius
}
