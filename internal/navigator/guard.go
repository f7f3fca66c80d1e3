package navigator

// syntheticGuard marks the window during which a script-issued click is in
// flight, so the click observer can tell the layer's own activations apart
// from genuine user clicks. Release is tied to function exit: the flag
// cannot stay stuck even when the activation panics, which would otherwise
// make every later user click look synthetic and freeze the clear-on-click
// behavior for the rest of the page's life.
//
// All handlers run on the session's single event goroutine, so a plain bool
// suffices.
type syntheticGuard struct {
	held bool
}

// do runs fn with the guard held for exactly its duration.
func (g *syntheticGuard) do(fn func() error) error {
	g.held = true
	defer func() { g.held = false }()
	return fn()
}

// Held reports whether a synthetic activation is currently in flight.
func (g *syntheticGuard) Held() bool {
	return g.held
}
