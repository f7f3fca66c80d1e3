package browser

import (
	"context"
	"time"
)

// CombineContext derives a context from primary that is canceled as soon as
// either primary or secondary is done. It inherits values from primary,
// which matters for chromedp: the session context carries the CDP target,
// while the secondary context carries the per-call deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext keeps a parent's values but drops its deadline and
// cancellation signal.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context that inherits values from ctx but survives its
// cancellation. Used for last-chance cleanup against the tab while the
// session is being torn down, where the CDP target info must stay reachable
// after the session context has been canceled.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
