package engine

import (
	"context"
	"errors"
	"time"
)

// RenderTimeout is the hard limit for a single document render.
const RenderTimeout = 30 * time.Second

// ErrSuperseded is returned by RenderDocument when a newer call on the same
// engine started before it finished.
var ErrSuperseded = errors.New("engine: render superseded by newer request")

// withTimeout applies RenderTimeout unless ctx already carries an earlier
// deadline.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= RenderTimeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, RenderTimeout)
}

// begin starts a new generation and returns it.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// current reports whether gen is still the newest generation; a stale
// result belongs to a request the caller has already replaced.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
