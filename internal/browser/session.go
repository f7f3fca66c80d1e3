// Package browser drives a Chrome tab over the DevTools protocol and feeds
// page events into the navigation state machine. It owns the allocator, the
// injected agent, and the single-goroutine event pump.
package browser

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feednav/feednav-cli/internal/config"
	"github.com/feednav/feednav-cli/internal/navigator"
)

// eventBuffer bounds the queue between the CDP listener goroutine and the
// dispatch loop. Keystrokes are small and handlers finish in a few round
// trips, so the buffer only fills if the tab floods us.
const eventBuffer = 256

// Session is one driven browser tab: allocator, agent, page driver, and the
// navigator wired on top.
type Session struct {
	id     string
	logger *zap.Logger
	cfg    *config.Config

	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	driver *PageDriver
	nav    *navigator.Navigator

	events chan string

	closeOnce sync.Once
}

// NewSession builds the allocator and tab contexts per the config: a local
// headless launch by default, or an attachment to a running browser when
// remote_url is set. The parent context bounds the browser's lifetime, so
// pass one that outlives the shutdown sequence.
func NewSession(parent context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	sessionLogger := logger.Named("browser").With(zap.String("session_id", sessionID))

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
		tabOpts     []chromedp.ContextOption
	)
	if cfg.Browser.RemoteURL != "" {
		endpoint, err := probeRemote(parent, cfg.Browser.RemoteURL, cfg.Browser.AttachTimeout, sessionLogger)
		if err != nil {
			return nil, err
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, endpoint.BrowserWSURL)
		tabOpts = append(tabOpts, chromedp.WithTargetID(target.ID(endpoint.TargetID)))
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, execAllocatorOptions(cfg.Browser)...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, tabOpts...)

	driver := NewPageDriver(tabCtx, cfg.Page, sessionLogger)
	nav, err := navigator.NewNavigator(driver, navigator.Config{
		ThreadPathPattern: cfg.Page.ThreadPathPattern,
		HeaderOffsetPx:    cfg.Page.HeaderOffsetPx,
	}, sessionLogger)
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	return &Session{
		id:          sessionID,
		logger:      sessionLogger,
		cfg:         cfg,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
		driver:      driver,
		nav:         nav,
		events:      make(chan string, eventBuffer),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Driver exposes the page primitives for one-shot commands.
func (s *Session) Driver() *PageDriver {
	return s.driver
}

// Initialize connects to the target, installs the binding and the agent,
// and brings the session to the page: navigating when targetURL is set,
// adopting the tab's current document otherwise.
func (s *Session) Initialize(ctx context.Context, targetURL string) error {
	// 1. Materialize the tab and the CDP connection.
	if err := s.run(ctx); err != nil {
		return fmt.Errorf("connect browser target: %w", err)
	}

	// 2. Install the binding before any document can want it. It applies
	// to existing execution contexts as well as future ones.
	if err := s.run(ctx, runtime.AddBinding(bindingName)); err != nil {
		return fmt.Errorf("add event binding: %w", err)
	}

	// 3. Forward binding calls into the event queue in arrival order.
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		call, ok := ev.(*runtime.EventBindingCalled)
		if !ok || call.Name != bindingName {
			return
		}
		select {
		case s.events <- call.Payload:
		default:
			// Dropping is the lesser evil here: blocking would stall the
			// CDP event dispatcher the pump's own commands depend on.
			s.logger.Warn("Event queue full, dropping page event.", zap.String("payload", call.Payload))
		}
	})

	// 4. Arrange for the agent to run at the start of every future
	// document in this tab.
	script, err := buildAgentScript(s.cfg.Page)
	if err != nil {
		return err
	}
	if err := s.injectPersistent(ctx, script); err != nil {
		return err
	}

	// 5. Reach the feed. A fresh navigation triggers the persistent
	// script; an adopted document needs the agent evaluated in place, and
	// the agent announces the already-finished load itself.
	if targetURL != "" {
		if err := s.navigate(ctx, targetURL); err != nil {
			return err
		}
	} else {
		if err := s.run(ctx, chromedp.Evaluate(script, nil)); err != nil {
			return fmt.Errorf("install agent in current document: %w", err)
		}
	}

	s.logger.Info("Session ready.", zap.String("session_id", s.id))
	return nil
}

// Run pumps page events through the navigator until ctx is canceled or the
// browser target goes away. Events are handled strictly one at a time in
// arrival order; the state machine depends on that.
func (s *Session) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pump(runCtx)
	})
	g.Go(func() error {
		select {
		case <-s.ctx.Done():
			return fmt.Errorf("browser target closed: %w", s.ctx.Err())
		case <-runCtx.Done():
			return nil
		}
	})

	return g.Wait()
}

func (s *Session) pump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-s.events:
			s.dispatch(ctx, payload)
		}
	}
}

// dispatch decodes one agent payload and runs the matching handler. A
// malformed payload or a failed handler is logged and skipped; a panic is
// contained so one bad event cannot kill the pump.
func (s *Session) dispatch(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while handling page event.",
				zap.Any("panic_reason", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	evt, err := decodeEvent(payload)
	if err != nil {
		s.logger.Warn("Dropping malformed page event.", zap.Error(err))
		return
	}

	switch evt.Type {
	case eventKey:
		err = s.nav.HandleKey(ctx, navigator.KeyEvent{Key: evt.Key, Editable: evt.Editable, Path: evt.Path})
	case eventClick:
		err = s.nav.HandleClick(ctx, navigator.ClickEvent{Synthetic: evt.Synthetic, Path: evt.Path})
	case eventLoad:
		err = s.nav.HandleLoad(ctx, navigator.LoadEvent{Path: evt.Path})
	default:
		s.logger.Debug("Ignoring unknown page event type.", zap.String("type", evt.Type))
		return
	}
	if err != nil {
		if ctx.Err() != nil || s.ctx.Err() != nil {
			return
		}
		s.logger.Warn("Page event handling failed.",
			zap.String("type", evt.Type),
			zap.Error(err))
	}
}

// navigate drives the tab to url and waits for the document body, bounded
// by the configured navigation timeout.
func (s *Session) navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Page.NavigationTimeout)
	defer cancel()

	s.logger.Info("Navigating.", zap.String("url", url))
	if err := s.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// injectPersistent registers the script to run on every new document.
func (s *Session) injectPersistent(ctx context.Context, script string) error {
	var scriptID page.ScriptIdentifier
	err := s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		scriptID, err = page.AddScriptToEvaluateOnNewDocument(script).Do(c)
		return err
	}))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("inject persistent agent: %w", err)
	}
	s.logger.Debug("Injected persistent agent.", zap.String("script_id", string(scriptID)))
	return nil
}

// run executes chromedp actions bound to both the session lifetime and the
// caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Close releases the tab and, for a locally launched browser, the process.
// Call it after Run has returned; it is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")

		// Leave the page as we found it. Best effort and bounded, on a
		// detached context because the caller's contexts are usually
		// already done by now.
		if id := s.nav.Current(); id != "" {
			cleanCtx, cancel := context.WithTimeout(Detach(s.ctx), 2*time.Second)
			if err := s.driver.ClearHighlight(cleanCtx, id); err != nil {
				s.logger.Debug("Could not remove highlight during shutdown.", zap.Error(err))
			}
			cancel()
		}

		if s.cancel != nil {
			s.cancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
	})
	return nil
}
