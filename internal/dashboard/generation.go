package dashboard

import (
	"context"
	"sync"
)

// generation tracks the newest query of one kind. Starting a query cancels
// the previous one, and only the newest may commit its result.
type generation struct {
	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
}

// begin starts a new query derived from ctx and cancels the previous one.
func (g *generation) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	g.current++
	g.cancel = cancel
	return ctx, g.current
}

// isCurrent reports whether id is still the newest query.
func (g *generation) isCurrent(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return id == g.current
}

// finish releases the context of query id if it is still the newest.
func (g *generation) finish(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id == g.current && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// stop cancels whatever query is in flight and invalidates it.
func (g *generation) stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.current++
}
