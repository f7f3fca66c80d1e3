// Package navigator implements the keyboard navigation state machine for a
// social feed page: a post locator, a focus controller owning the single
// cursor, and the input dispatcher that maps key, click, and load events
// onto them. The package is DOM-agnostic; everything it knows about the
// host document goes through the Page interface.
package navigator

import (
	"context"

	"go.uber.org/zap"
)

// Config carries the two knobs the state machine needs. Selector details
// stay with the Page implementation.
type Config struct {
	// ThreadPathPattern is the regular expression identifying a
	// single-post permalink path.
	ThreadPathPattern string

	// HeaderOffsetPx is the height of the page's fixed header. Focused
	// posts are scrolled to sit just below it, and the same offset bounds
	// the visible region during first-visible inference.
	HeaderOffsetPx float64
}

// Navigator is the input dispatcher. It maps key, click, and load events
// onto locator queries and focus operations. Handlers must be called from a
// single goroutine; the state machine relies on each handler running to
// completion before the next event is dispatched.
type Navigator struct {
	logger  *zap.Logger
	locator *Locator
	focus   *FocusController
}

// NewNavigator builds the dispatcher and its collaborators over the given
// page.
func NewNavigator(page Page, cfg Config, logger *zap.Logger) (*Navigator, error) {
	logger = logger.Named("navigator")
	locator, err := NewLocator(page, cfg.ThreadPathPattern, logger)
	if err != nil {
		return nil, err
	}
	return &Navigator{
		logger:  logger,
		locator: locator,
		focus:   NewFocusController(page, cfg.HeaderOffsetPx, logger),
	}, nil
}

// Current returns the ID of the focused post, or "" when focus is empty.
func (n *Navigator) Current() string {
	return n.focus.Current()
}

// HandleKey runs one keydown through the dispatch sequence. The order of
// checks is load-bearing: typing is never hijacked, Enter acts on the
// existing cursor without a list query, and j/k/l re-resolve the list
// before touching any state.
func (n *Navigator) HandleKey(ctx context.Context, evt KeyEvent) error {
	if evt.Editable {
		return nil
	}
	switch evt.Key {
	case KeyOpen:
		return n.focus.OpenCurrent(ctx)
	case KeyNext, KeyPrev, KeyLike:
	default:
		return nil
	}

	list, err := n.locator.List(ctx, evt.Path)
	if err != nil {
		return err
	}
	if len(list.Posts) == 0 {
		return nil
	}

	// A cursor that vanished from the fresh list is dropped, never reused.
	idx := list.IndexOf(n.focus.Current())
	inferred := false
	if idx < 0 {
		post, ok := n.focus.FirstVisible(list)
		if !ok {
			n.logger.Debug("no post overlaps the viewport", zap.String("path", evt.Path))
			return nil
		}
		if err := n.focus.Focus(ctx, post); err != nil {
			return err
		}
		idx = list.IndexOf(post.ID)
		inferred = true
	}

	if evt.Key == KeyLike {
		return n.focus.LikeCurrent(ctx)
	}

	// The press that established focus settles there; it does not also
	// move.
	if inferred {
		return nil
	}

	target := idx
	switch evt.Key {
	case KeyNext:
		target = min(idx+1, len(list.Posts)-1)
	case KeyPrev:
		target = max(idx-1, 0)
	}
	return n.focus.Focus(ctx, list.Posts[target])
}

// HandleClick clears focus on genuine user clicks. Clicks the layer issued
// itself, whether marked synthetic at dispatch time or observed while the
// guard is held, keep the cursor.
func (n *Navigator) HandleClick(ctx context.Context, evt ClickEvent) error {
	if evt.Synthetic || n.focus.SyntheticActive() {
		return nil
	}
	return n.focus.Clear(ctx)
}

// HandleLoad pre-seeds the cursor once the page has loaded, so the first
// keypress moves immediately instead of merely establishing focus.
func (n *Navigator) HandleLoad(ctx context.Context, evt LoadEvent) error {
	list, err := n.locator.List(ctx, evt.Path)
	if err != nil {
		return err
	}
	if len(list.Posts) == 0 {
		return nil
	}
	post, ok := n.focus.FirstVisible(list)
	if !ok {
		return nil
	}
	return n.focus.Focus(ctx, post)
}
