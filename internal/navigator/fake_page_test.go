package navigator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feednav/feednav-cli/internal/navigator"
)

// fakePost is one simulated post element in the fake document.
type fakePost struct {
	id       string
	top      float64
	bottom   float64
	likeable bool
	liked    bool
}

// fakePage is an in-memory navigator.Page: a flat document of posts plus
// the bookkeeping the tests assert on. Like the real page, it treats
// missing elements as silent no-ops and leaves the highlight class on
// detached nodes.
type fakePage struct {
	posts     []fakePost
	viewportH float64

	highlighted map[string]bool

	listCalls  int
	lastMode   navigator.ViewMode
	scrolls    []string
	postClicks []string
	likeClicks []string

	listErr     error
	clearErr    error
	activateErr error
	panicOnLike bool

	// onActivate runs synchronously inside ActivatePost and ActivateLike,
	// mirroring how the host page's own click handling fires during
	// dispatch of a synthetic click.
	onActivate func()
}

var _ navigator.Page = (*fakePage)(nil)

func newFakePage(posts ...fakePost) *fakePage {
	return &fakePage{
		posts:       posts,
		viewportH:   900,
		highlighted: make(map[string]bool),
	}
}

// feedPosts is the canonical three-post fixture: p0 scrolled above the
// viewport, p1 fully visible, p2 straddling the viewport bottom with most
// of its height showing.
func feedPosts(likeable bool) []fakePost {
	return []fakePost{
		{id: "p0", top: -400, bottom: -100, likeable: likeable},
		{id: "p1", top: 100, bottom: 400, likeable: likeable},
		{id: "p2", top: 700, bottom: 1000, likeable: likeable},
	}
}

func (f *fakePage) find(id string) *fakePost {
	for i := range f.posts {
		if f.posts[i].id == id {
			return &f.posts[i]
		}
	}
	return nil
}

func (f *fakePage) removePost(id string) {
	for i := range f.posts {
		if f.posts[i].id == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return
		}
	}
}

// attachedHighlights returns the IDs of posts still in the document that
// carry the highlight class, in document order.
func (f *fakePage) attachedHighlights() []string {
	var out []string
	for _, p := range f.posts {
		if f.highlighted[p.id] {
			out = append(out, p.id)
		}
	}
	return out
}

func (f *fakePage) ListPosts(_ context.Context, mode navigator.ViewMode) (navigator.PostList, error) {
	f.listCalls++
	f.lastMode = mode
	if f.listErr != nil {
		return navigator.PostList{}, f.listErr
	}
	list := navigator.PostList{ViewportHeight: f.viewportH, Mode: mode}
	for _, p := range f.posts {
		list.Posts = append(list.Posts, navigator.Post{ID: p.id, Top: p.top, Bottom: p.bottom})
	}
	return list, nil
}

func (f *fakePage) FocusPost(_ context.Context, id string, _ float64) error {
	// The real page migrates the class in one step: strip it from every
	// attached holder, then mark the target.
	for _, p := range f.posts {
		delete(f.highlighted, p.id)
	}
	if f.find(id) == nil {
		return nil
	}
	f.highlighted[id] = true
	f.scrolls = append(f.scrolls, id)
	return nil
}

func (f *fakePage) ClearHighlight(_ context.Context, id string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	if f.find(id) == nil {
		return nil
	}
	delete(f.highlighted, id)
	return nil
}

func (f *fakePage) ActivatePost(_ context.Context, id string) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	if f.find(id) == nil {
		return nil
	}
	f.postClicks = append(f.postClicks, id)
	if f.onActivate != nil {
		f.onActivate()
	}
	return nil
}

func (f *fakePage) ActivateLike(_ context.Context, id string) (bool, error) {
	if f.panicOnLike {
		panic("like toggle exploded")
	}
	if f.activateErr != nil {
		return false, f.activateErr
	}
	p := f.find(id)
	if p == nil || !p.likeable {
		return false, nil
	}
	p.liked = !p.liked
	f.likeClicks = append(f.likeClicks, id)
	if f.onActivate != nil {
		f.onActivate()
	}
	return true, nil
}

// assertCursorConsistent checks the single-highlight invariant: at most one
// attached post carries the class, and when one does it is the cursor. A
// non-empty cursor with no attached highlight is legal only because the
// element may have been detached since it was focused.
func assertCursorConsistent(t *testing.T, nav *navigator.Navigator, page *fakePage) {
	t.Helper()
	hl := page.attachedHighlights()
	require.LessOrEqual(t, len(hl), 1)
	cursor := nav.Current()
	if cursor == "" {
		require.Empty(t, hl)
		return
	}
	if len(hl) == 1 {
		require.Equal(t, cursor, hl[0])
	}
}
