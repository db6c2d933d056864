package browser

import (
	"encoding/json"
	"sync"
)

// Fallback viewport used when the page cannot be queried.
const (
	FallbackWidth  = 1280
	FallbackHeight = 720
)

const viewportJS = `({ w: window.innerWidth, h: window.innerHeight })`

// Resolver queries the live page for its viewport and derives the default
// close-button point for the harmful-content modal. The modal is assumed
// horizontally centered with its dismiss control ~100px below center; the
// point is cached after the first successful read.
type Resolver struct {
	page Page

	mu        sync.Mutex
	closeX    int
	closeY    int
	haveClose bool
}

func NewResolver(page Page) *Resolver {
	return &Resolver{page: page}
}

// Viewport returns the page's inner size, falling back to 1280x720 on any
// evaluation or parse failure. The bool reports whether the live read worked.
func (r *Resolver) Viewport() (int, int, bool) {
	v, err := r.page.Evaluate(viewportJS)
	if err != nil {
		return FallbackWidth, FallbackHeight, false
	}
	w, h, ok := parseViewport(v)
	if !ok {
		return FallbackWidth, FallbackHeight, false
	}
	return w, h, true
}

// Center returns the current viewport center.
func (r *Resolver) Center() (int, int) {
	w, h, _ := r.Viewport()
	return w / 2, h / 2
}

// CloseButtonPoint returns the heuristic dismiss-control coordinate
// (center_x, center_y + 100). The first read backed by a live viewport is
// cached for the rest of the run; fallback-derived values are not cached so
// a later successful read can replace them.
func (r *Resolver) CloseButtonPoint() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.haveClose {
		return r.closeX, r.closeY
	}
	w, h, live := r.Viewport()
	x, y := w/2, h/2+100
	if live {
		r.closeX, r.closeY = x, y
		r.haveClose = true
	}
	return x, y
}

// parseViewport accepts the evaluate result in whichever shape the backend
// returns it: a decoded object or a JSON string.
func parseViewport(v any) (int, int, bool) {
	switch t := v.(type) {
	case map[string]any:
		w, okW := asInt(t["w"])
		h, okH := asInt(t["h"])
		if okW && okH && w > 0 && h > 0 {
			return w, h, true
		}
	case string:
		var data struct {
			W int `json:"w"`
			H int `json:"h"`
		}
		if err := json.Unmarshal([]byte(t), &data); err == nil && data.W > 0 && data.H > 0 {
			return data.W, data.H, true
		}
	}
	return 0, 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
