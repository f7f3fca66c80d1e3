package navigator

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// Locator resolves the ordered list of navigable posts. Which query the
// host document runs depends on the current navigation path: a
// permalink-shaped path means a single-thread view, anything else is a
// feed.
type Locator struct {
	logger   *zap.Logger
	page     Page
	threadRe *regexp.Regexp
}

// NewLocator compiles the thread permalink pattern and returns a locator
// over the given page.
func NewLocator(page Page, threadPathPattern string, logger *zap.Logger) (*Locator, error) {
	re, err := regexp.Compile(threadPathPattern)
	if err != nil {
		return nil, fmt.Errorf("compile thread path pattern: %w", err)
	}
	return &Locator{
		logger:   logger.Named("locator"),
		page:     page,
		threadRe: re,
	}, nil
}

// Mode classifies a navigation path as thread or feed view.
func (l *Locator) Mode(path string) ViewMode {
	if l.threadRe.MatchString(path) {
		return ModeThread
	}
	return ModeFeed
}

// List queries the host document for the posts currently on the page. An
// empty list means there is nothing to navigate, not a failure.
func (l *Locator) List(ctx context.Context, path string) (PostList, error) {
	mode := l.Mode(path)
	list, err := l.page.ListPosts(ctx, mode)
	if err != nil {
		return PostList{}, fmt.Errorf("list posts in %s view: %w", mode, err)
	}
	l.logger.Debug("resolved post list",
		zap.String("path", path),
		zap.String("mode", string(mode)),
		zap.Int("count", len(list.Posts)))
	return list, nil
}
