package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/feednav/feednav-cli/internal/config"
	"github.com/feednav/feednav-cli/internal/navigator"
)

// Page primitives evaluated via Runtime.callFunctionOn. Each is a
// self-contained function returning a JSON string, so a failed agent
// install never breaks them. Post identity is a data attribute assigned on
// first sight; a re-rendered element loses it and gets a fresh token on the
// next enumeration, which is what lets the Go side notice a stale cursor.
const (
	listPostsJS = `
function(selector) {
    const out = [];
    let seq = window.__feednavSeq || 0;
    for (const el of document.querySelectorAll(selector)) {
        if (!el.dataset.feednavId) {
            el.dataset.feednavId = 'p' + (++seq);
        }
        const rect = el.getBoundingClientRect();
        out.push({ id: el.dataset.feednavId, top: rect.top, bottom: rect.bottom });
    }
    window.__feednavSeq = seq;
    return JSON.stringify({ posts: out, viewportHeight: window.innerHeight });
}
`

	focusPostJS = `
function(id, className, headerOffset) {
    for (const el of document.querySelectorAll('.' + CSS.escape(className))) {
        el.classList.remove(className);
    }
    const el = document.querySelector('[data-feednav-id="' + CSS.escape(id) + '"]');
    if (!el) {
        return JSON.stringify({ found: false });
    }
    el.classList.add(className);
    const rect = el.getBoundingClientRect();
    window.scrollTo({ top: window.scrollY + rect.top - headerOffset, behavior: 'auto' });
    return JSON.stringify({ found: true });
}
`

	clearHighlightJS = `
function(id, className) {
    const el = document.querySelector('[data-feednav-id="' + CSS.escape(id) + '"]');
    if (!el) {
        return JSON.stringify({ found: false });
    }
    el.classList.remove(className);
    return JSON.stringify({ found: true });
}
`

	activatePostJS = `
function(id) {
    const el = document.querySelector('[data-feednav-id="' + CSS.escape(id) + '"]');
    if (!el) {
        return JSON.stringify({ found: false });
    }
    const state = (window.__feednav = window.__feednav || {});
    state.synthetic = (state.synthetic || 0) + 1;
    try {
        el.click();
    } finally {
        state.synthetic--;
    }
    return JSON.stringify({ found: true });
}
`

	activateLikeJS = `
function(id, prefixes) {
    const root = document.querySelector('[data-feednav-id="' + CSS.escape(id) + '"]');
    if (!root) {
        return JSON.stringify({ found: false });
    }
    for (const el of root.querySelectorAll('[aria-label]')) {
        const label = el.getAttribute('aria-label') || '';
        if (prefixes.some((p) => label.startsWith(p))) {
            const state = (window.__feednav = window.__feednav || {});
            state.synthetic = (state.synthetic || 0) + 1;
            try {
                el.click();
            } finally {
                state.synthetic--;
            }
            return JSON.stringify({ found: true });
        }
    }
    return JSON.stringify({ found: false });
}
`

	locationPathJS = `
function() {
    return JSON.stringify({ path: location.pathname });
}
`
)

// PageDriver implements navigator.Page over a live DevTools target.
type PageDriver struct {
	ctx    context.Context
	logger *zap.Logger
	cfg    config.PageConfig
}

var _ navigator.Page = (*PageDriver)(nil)

// NewPageDriver wraps a chromedp target context. The context must carry the
// target; the driver combines it with each call's own context so both the
// session lifetime and the per-call deadline apply.
func NewPageDriver(ctx context.Context, cfg config.PageConfig, logger *zap.Logger) *PageDriver {
	return &PageDriver{
		ctx:    ctx,
		logger: logger.Named("page"),
		cfg:    cfg,
	}
}

// call evaluates one page primitive and decodes its JSON string result
// into res.
func (d *PageDriver) call(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	runCtx, cancel := CombineContext(d.ctx, ctx)
	defer cancel()

	var raw string
	err := chromedp.Run(runCtx, chromedp.CallFunctionOn(
		fn,
		&raw,
		func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithAwaitPromise(true)
		},
		args...,
	))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if res == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), res); err != nil {
		return fmt.Errorf("unmarshal page result: %w", err)
	}
	return nil
}

// opResult is the shared envelope of the focus and activation primitives.
type opResult struct {
	Found bool `json:"found"`
}

func (d *PageDriver) ListPosts(ctx context.Context, mode navigator.ViewMode) (navigator.PostList, error) {
	selector := d.cfg.FeedItemSelector
	if mode == navigator.ModeThread {
		selector = d.cfg.ThreadItemSelector
	}

	var res struct {
		Posts []struct {
			ID     string  `json:"id"`
			Top    float64 `json:"top"`
			Bottom float64 `json:"bottom"`
		} `json:"posts"`
		ViewportHeight float64 `json:"viewportHeight"`
	}
	if err := d.call(ctx, listPostsJS, &res, selector); err != nil {
		return navigator.PostList{}, fmt.Errorf("enumerate posts: %w", err)
	}

	list := navigator.PostList{ViewportHeight: res.ViewportHeight, Mode: mode}
	for _, p := range res.Posts {
		list.Posts = append(list.Posts, navigator.Post{ID: p.ID, Top: p.Top, Bottom: p.Bottom})
	}
	return list, nil
}

func (d *PageDriver) FocusPost(ctx context.Context, id string, headerOffsetPx float64) error {
	var res opResult
	if err := d.call(ctx, focusPostJS, &res, id, d.cfg.HighlightClass, headerOffsetPx); err != nil {
		return fmt.Errorf("apply highlight: %w", err)
	}
	if !res.Found {
		d.logger.Debug("Focus target left the document.", zap.String("post_id", id))
	}
	return nil
}

func (d *PageDriver) ClearHighlight(ctx context.Context, id string) error {
	var res opResult
	if err := d.call(ctx, clearHighlightJS, &res, id, d.cfg.HighlightClass); err != nil {
		return fmt.Errorf("remove highlight: %w", err)
	}
	return nil
}

func (d *PageDriver) ActivatePost(ctx context.Context, id string) error {
	var res opResult
	if err := d.call(ctx, activatePostJS, &res, id); err != nil {
		return fmt.Errorf("click post: %w", err)
	}
	if !res.Found {
		d.logger.Debug("Post vanished before it could be opened.", zap.String("post_id", id))
	}
	return nil
}

func (d *PageDriver) ActivateLike(ctx context.Context, id string) (bool, error) {
	var res opResult
	if err := d.call(ctx, activateLikeJS, &res, id, d.cfg.LikeLabelPrefixes); err != nil {
		return false, fmt.Errorf("click like toggle: %w", err)
	}
	return res.Found, nil
}

// LocationPath returns the document's current navigation path. The event
// envelopes carry their own path; this exists for one-shot inspection.
func (d *PageDriver) LocationPath(ctx context.Context) (string, error) {
	var res struct {
		Path string `json:"path"`
	}
	if err := d.call(ctx, locationPathJS, &res); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return res.Path, nil
}
