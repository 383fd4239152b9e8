package transfer

import "sync/atomic"

// Guard admits one transfer at a time.
type Guard struct {
	active atomic.Bool
}

// TryStart claims the guard, or returns ErrTransferInProgress immediately
// if a transfer is already running.
func (g *Guard) TryStart() error {
	if !g.active.CompareAndSwap(false, true) {
		return ErrTransferInProgress
	}
	return nil
}

// Done releases the guard.
func (g *Guard) Done() {
	g.active.Store(false)
}

// Active reports whether a transfer is running.
func (g *Guard) Active() bool {
	return g.active.Load()
}
