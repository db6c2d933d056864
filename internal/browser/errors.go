package browser

import (
	"context"
	"errors"
	"strings"
)

// IsTimeoutError reports whether err looks like a transient automation-layer
// timeout. This is a text heuristic: the playwright and CDP layers surface
// timeouts as ordinary errors with recognizable messages.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout",
		"timed out",
		"deadline exceeded",
		"err_timed_out",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
