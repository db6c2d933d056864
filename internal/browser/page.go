package browser

// Page is the minimal surface the monitor needs from a live browser page.
// The game is canvas-rendered, so there is no DOM to query: everything goes
// through coordinates, screenshots and JS evaluation.
type Page interface {
	Navigate(url string) error
	Click(x, y int) error
	Screenshot() ([]byte, error)
	Evaluate(js string) (any, error)
}

// Session owns a browser connection. Page may return a new handle after
// Restart, so callers should re-fetch it per cycle rather than hold one.
type Session interface {
	Page() Page
	// Restart tears the session down and brings up a fresh one. Used to
	// recover from timeout-shaped automation errors.
	Restart() error
	Close()
}
