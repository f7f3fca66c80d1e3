package navigator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/feednav/feednav-cli/internal/navigator"
)

func newLocator(t *testing.T, page *fakePage) *navigator.Locator {
	t.Helper()
	loc, err := navigator.NewLocator(page, threadPattern, zaptest.NewLogger(t))
	require.NoError(t, err)
	return loc
}

func TestModeClassification(t *testing.T) {
	loc := newLocator(t, newFakePage())

	tests := []struct {
		path string
		want navigator.ViewMode
	}{
		{"/", navigator.ModeFeed},
		{"/search", navigator.ModeFeed},
		{"/notifications", navigator.ModeFeed},
		{"/profile/alice.test", navigator.ModeFeed},
		{"/profile/alice.test/post/3jzfcijpj2z2a", navigator.ModeThread},
		{"/profile/did:plc:abc123/post/3k2aabcdef", navigator.ModeThread},
		{"/profile/alice.test/post/3k2aabcdef/liked-by", navigator.ModeFeed},
		{"/profile/alice.test/post/", navigator.ModeFeed},
		{"", navigator.ModeFeed},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, loc.Mode(tc.path), "path %q", tc.path)
	}
}

func TestNewLocatorRejectsInvalidPattern(t *testing.T) {
	_, err := navigator.NewLocator(newFakePage(), "(", zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorContains(t, err, "compile thread path pattern")
}

func TestListCarriesViewportAndMode(t *testing.T) {
	page := newFakePage(feedPosts(true)...)
	loc := newLocator(t, page)

	got, err := loc.List(context.Background(), "/profile/alice.test/post/3k2aabcdef")
	require.NoError(t, err)

	want := navigator.PostList{
		Posts: []navigator.Post{
			{ID: "p0", Top: -400, Bottom: -100},
			{ID: "p1", Top: 100, Bottom: 400},
			{ID: "p2", Top: 700, Bottom: 1000},
		},
		ViewportHeight: 900,
		Mode:           navigator.ModeThread,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("post list mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, navigator.ModeThread, page.lastMode)
}

func TestListReportsTransportError(t *testing.T) {
	page := newFakePage(feedPosts(true)...)
	page.listErr = errors.New("target detached")
	loc := newLocator(t, page)

	_, err := loc.List(context.Background(), "/")
	require.Error(t, err)
	assert.ErrorContains(t, err, "list posts")
}
