package browser

import (
	"context"
	"fmt"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// CDPSession attaches to an already-running Chrome over the DevTools
// protocol (USE_CDP mode), instead of launching a browser of its own.
type CDPSession struct {
	cdpURL      string
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewCDPSession(cdpURL string) (*CDPSession, error) {
	s := &CDPSession{cdpURL: cdpURL}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CDPSession) connect() error {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), s.cdpURL)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Force the connection now so a missing Chrome fails at startup, not on
	// the first click.
	probe, probeCancel := context.WithTimeout(ctx, 10*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probe); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("connect to Chrome at %s failed: %w", s.cdpURL, err)
	}

	s.allocCtx = allocCtx
	s.allocCancel = allocCancel
	s.ctx = ctx
	s.cancel = cancel
	return nil
}

func (s *CDPSession) Page() Page {
	return &cdpPage{s: s}
}

// Restart drops the tab context and reattaches. The external Chrome keeps
// running; we only recycle our connection to it.
func (s *CDPSession) Restart() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	time.Sleep(2 * time.Second)
	return s.connect()
}

func (s *CDPSession) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

type cdpPage struct {
	s *CDPSession
}

func (p *cdpPage) Navigate(url string) error {
	return chromedp.Run(p.s.ctx, chromedp.Navigate(url))
}

func (p *cdpPage) Click(x, y int) error {
	return chromedp.Run(p.s.ctx, chromedp.MouseClickXY(float64(x), float64(y)))
}

func (p *cdpPage) Screenshot() ([]byte, error) {
	var buf []byte
	err := chromedp.Run(p.s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = cdppage.CaptureScreenshot().
			WithFormat(cdppage.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	}))
	return buf, err
}

func (p *cdpPage) Evaluate(js string) (any, error) {
	var res any
	if err := chromedp.Run(p.s.ctx, chromedp.Evaluate(js, &res)); err != nil {
		return nil, err
	}
	return res, nil
}
