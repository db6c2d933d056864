package monitor

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// SignalController surfaces Ctrl+C to the loops. Interrupted is sticky:
// both loops poll it at their iteration boundaries.
type SignalController struct {
	ch  chan os.Signal
	hit atomic.Bool
}

func NewSignalController() *SignalController {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return &SignalController{ch: ch}
}

func (s *SignalController) Interrupted() bool {
	if s.hit.Load() {
		return true
	}
	select {
	case <-s.ch:
		s.hit.Store(true)
		return true
	default:
		return false
	}
}

func (s *SignalController) Close() {
	signal.Stop(s.ch)
}
