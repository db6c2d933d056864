package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakePage scripts Evaluate results for the resolver tests.
type fakePage struct {
	results []any
	errs    []error
	calls   int
}

func (f *fakePage) Navigate(string) error       { return nil }
func (f *fakePage) Click(int, int) error        { return nil }
func (f *fakePage) Screenshot() ([]byte, error) { return nil, nil }

func (f *fakePage) Evaluate(string) (any, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if f.errs != nil && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.results[i], nil
}

func TestViewportFromObject(t *testing.T) {
	r := NewResolver(&fakePage{results: []any{map[string]any{"w": float64(1920), "h": float64(1080)}}})
	w, h, live := r.Viewport()
	if !live || w != 1920 || h != 1080 {
		t.Fatalf("got %dx%d live=%v", w, h, live)
	}
}

func TestViewportFromJSONString(t *testing.T) {
	r := NewResolver(&fakePage{results: []any{`{"w": 1024, "h": 768}`}})
	w, h, live := r.Viewport()
	if !live || w != 1024 || h != 768 {
		t.Fatalf("got %dx%d live=%v", w, h, live)
	}
}

func TestViewportFallback(t *testing.T) {
	for _, p := range []*fakePage{
		{results: []any{nil}, errs: []error{fmt.Errorf("page gone")}},
		{results: []any{"not json"}},
		{results: []any{map[string]any{"w": "wide"}}},
	} {
		w, h, live := NewResolver(p).Viewport()
		if live || w != FallbackWidth || h != FallbackHeight {
			t.Fatalf("got %dx%d live=%v, want fallback", w, h, live)
		}
	}
}

func TestCloseButtonPointCachedOnFirstLiveRead(t *testing.T) {
	p := &fakePage{
		results: []any{
			map[string]any{"w": float64(1000), "h": float64(600)},
			map[string]any{"w": float64(400), "h": float64(400)},
		},
	}
	r := NewResolver(p)

	x, y := r.CloseButtonPoint()
	if x != 500 || y != 400 {
		t.Fatalf("got (%d,%d), want (500,400)", x, y)
	}
	// viewport changes afterwards must not move the cached point
	x, y = r.CloseButtonPoint()
	if x != 500 || y != 400 {
		t.Fatalf("cached point moved to (%d,%d)", x, y)
	}
}

func TestCloseButtonPointNotCachedOnFallback(t *testing.T) {
	p := &fakePage{
		results: []any{nil, map[string]any{"w": float64(1000), "h": float64(600)}},
		errs:    []error{fmt.Errorf("evaluate failed"), nil},
	}
	r := NewResolver(p)

	x, y := r.CloseButtonPoint()
	if x != FallbackWidth/2 || y != FallbackHeight/2+100 {
		t.Fatalf("got (%d,%d), want fallback-derived point", x, y)
	}
	// second call sees a live viewport and caches the real point
	x, y = r.CloseButtonPoint()
	if x != 500 || y != 400 {
		t.Fatalf("got (%d,%d), want (500,400)", x, y)
	}
}

func TestIsTimeoutError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Timeout 60000ms exceeded"), true},
		{fmt.Errorf("run: %w", context.DeadlineExceeded), true},
		{errors.New("net::ERR_TIMED_OUT"), true},
		{errors.New("element not found"), false},
	}
	for _, c := range cases {
		if got := IsTimeoutError(c.err); got != c.want {
			t.Errorf("IsTimeoutError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
