package navigator

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// FocusController owns the focus cursor. At most one post is focused at a
// time; while the cursor is set, that post carries the highlight class and
// no other attached element does.
type FocusController struct {
	logger       *zap.Logger
	page         Page
	headerOffset float64
	guard        syntheticGuard
	cursor       string
}

// NewFocusController returns a controller with an empty cursor.
// headerOffsetPx is the height of the page's fixed header; focused posts
// are scrolled to sit just below it.
func NewFocusController(page Page, headerOffsetPx float64, logger *zap.Logger) *FocusController {
	return &FocusController{
		logger:       logger.Named("focus"),
		page:         page,
		headerOffset: headerOffsetPx,
	}
}

// Current returns the ID of the focused post, or "" when focus is empty.
func (c *FocusController) Current() string {
	return c.cursor
}

// SyntheticActive reports whether a synthetic activation is in flight.
func (c *FocusController) SyntheticActive() bool {
	return c.guard.Held()
}

// Focus moves the cursor to post, migrates the highlight class, and scrolls
// the post's top edge to just below the fixed header. Focusing the
// already-focused post re-applies the scroll.
func (c *FocusController) Focus(ctx context.Context, post Post) error {
	if prev := c.cursor; prev != "" && prev != post.ID {
		// A previous cursor that was detached from the document is fine;
		// ClearHighlight fails only on transport errors.
		if err := c.page.ClearHighlight(ctx, prev); err != nil {
			return fmt.Errorf("clear previous highlight: %w", err)
		}
	}
	c.cursor = post.ID
	if err := c.page.FocusPost(ctx, post.ID, c.headerOffset); err != nil {
		return fmt.Errorf("focus post %s: %w", post.ID, err)
	}
	c.logger.Debug("focused post", zap.String("post_id", post.ID))
	return nil
}

// Clear empties the cursor and removes the highlight from the previously
// focused post. The cursor is dropped even when the highlight removal
// fails, since a stale cursor is worse than a stale highlight.
func (c *FocusController) Clear(ctx context.Context) error {
	if c.cursor == "" {
		return nil
	}
	prev := c.cursor
	c.cursor = ""
	if err := c.page.ClearHighlight(ctx, prev); err != nil {
		return fmt.Errorf("clear highlight: %w", err)
	}
	c.logger.Debug("cleared focus", zap.String("post_id", prev))
	return nil
}

// LikeCurrent toggles the like control inside the focused post's subtree.
// Nothing happens when focus is empty or the post carries no recognizable
// toggle.
func (c *FocusController) LikeCurrent(ctx context.Context) error {
	if c.cursor == "" {
		c.logger.Debug("like ignored, no focused post")
		return nil
	}
	id := c.cursor
	return c.guard.do(func() error {
		found, err := c.page.ActivateLike(ctx, id)
		if err != nil {
			return fmt.Errorf("activate like on %s: %w", id, err)
		}
		if !found {
			c.logger.Debug("no like toggle in focused post", zap.String("post_id", id))
			return nil
		}
		c.logger.Debug("toggled like", zap.String("post_id", id))
		return nil
	})
}

// OpenCurrent activates the focused post itself, which navigates to its
// thread, then clears focus. The cursor is cleared even when the activation
// fails because the page state afterwards is unknown either way.
func (c *FocusController) OpenCurrent(ctx context.Context) error {
	if c.cursor == "" {
		c.logger.Debug("open ignored, no focused post")
		return nil
	}
	id := c.cursor
	err := c.guard.do(func() error {
		return c.page.ActivatePost(ctx, id)
	})
	if clearErr := c.Clear(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	if err != nil {
		return fmt.Errorf("open post %s: %w", id, err)
	}
	c.logger.Debug("opened post", zap.String("post_id", id))
	return nil
}

// FirstVisible picks the post to treat as current when no cursor exists.
// The first pass wants a substantially visible post: more than half its
// height inside the viewport below the header, bottom edge below the
// header. The second pass settles for the first post with any viewport
// overlap at all. The exact thresholds change which post wins at viewport
// edges, so both passes keep them verbatim.
func (c *FocusController) FirstVisible(list PostList) (Post, bool) {
	for _, p := range list.Posts {
		if p.Bottom <= c.headerOffset {
			continue
		}
		visible := math.Min(p.Bottom, list.ViewportHeight) - math.Max(p.Top, c.headerOffset)
		if visible > p.Height()/2 {
			return p, true
		}
	}
	for _, p := range list.Posts {
		if p.Bottom > c.headerOffset && p.Top < list.ViewportHeight {
			return p, true
		}
	}
	return Post{}, false
}
