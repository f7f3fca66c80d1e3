package navigator

import "context"

// ViewMode selects which query the host document runs to enumerate posts.
type ViewMode string

const (
	// ModeFeed enumerates the posts of a multi-post feed page.
	ModeFeed ViewMode = "feed"
	// ModeThread enumerates the root post and replies of a single-thread page.
	ModeThread ViewMode = "thread"
)

// Post is a handle to one navigable post in the host document. ID is the
// page-assigned token for the underlying element; a re-rendered element
// receives a fresh token, which is what invalidates a stale cursor. Top and
// Bottom are viewport-relative offsets in CSS pixels.
type Post struct {
	ID     string
	Top    float64
	Bottom float64
}

// Height returns the post's rendered height in CSS pixels.
func (p Post) Height() float64 {
	return p.Bottom - p.Top
}

// PostList is one snapshot of the navigable posts in document order. It is
// re-derived for every event and never cached, so it stays correct across
// insertions and removals between events.
type PostList struct {
	Posts          []Post
	ViewportHeight float64
	Mode           ViewMode
}

// IndexOf returns the position of the post with the given ID, or -1 when no
// such post is in the snapshot.
func (l PostList) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range l.Posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Page is the host-document capability the navigation layer drives. The
// browser package implements it over DevTools; tests implement it in memory.
//
// Absence is not an error: every method treats a missing target element as a
// silent no-op and reserves its error return for transport failures.
type Page interface {
	// ListPosts enumerates the navigable posts for the given view mode.
	ListPosts(ctx context.Context, mode ViewMode) (PostList, error)

	// FocusPost migrates the highlight class to the post and scrolls the
	// window so the post's top edge sits headerOffsetPx below the viewport
	// top. The scroll is instant, never smooth, so rapid repeated calls do
	// not fight an animation.
	FocusPost(ctx context.Context, id string, headerOffsetPx float64) error

	// ClearHighlight removes the highlight class from the post.
	ClearHighlight(ctx context.Context, id string) error

	// ActivatePost issues a synthetic click on the post element itself,
	// which on the host page opens the post's thread.
	ActivatePost(ctx context.Context, id string) error

	// ActivateLike issues a synthetic click on the post's like toggle. The
	// bool reports whether a toggle was found inside the post's subtree.
	ActivateLike(ctx context.Context, id string) (bool, error)
}
