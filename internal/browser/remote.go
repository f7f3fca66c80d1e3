package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// devtoolsVersion is the subset of /json/version this package reads.
type devtoolsVersion struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// devtoolsTarget is one entry of /json/list.
type devtoolsTarget struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// remoteEndpoint is a resolved DevTools attachment point: the browser-level
// websocket plus the page target to drive.
type remoteEndpoint struct {
	BrowserWSURL string
	TargetID     string
	TargetURL    string
}

// probeRemote polls a DevTools HTTP endpoint (e.g. a Chrome started with
// --remote-debugging-port) until it answers or the timeout lapses. Polling
// is paced so a slow-starting browser is not hammered.
func probeRemote(ctx context.Context, baseURL string, timeout time.Duration, logger *zap.Logger) (remoteEndpoint, error) {
	base := strings.TrimSuffix(baseURL, "/")

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	limiter := rate.NewLimiter(rate.Every(500*time.Millisecond), 1)

	var lastErr error
	for {
		if err := limiter.Wait(probeCtx); err != nil {
			if lastErr != nil {
				return remoteEndpoint{}, fmt.Errorf("devtools endpoint %s not ready within %s: %w", base, timeout, lastErr)
			}
			return remoteEndpoint{}, fmt.Errorf("devtools probe aborted: %w", err)
		}

		var version devtoolsVersion
		if err := getJSON(probeCtx, client, base+"/json/version", &version); err != nil {
			lastErr = err
			logger.Debug("DevTools endpoint not answering yet.", zap.Error(err))
			continue
		}
		if version.WebSocketDebuggerURL == "" {
			lastErr = fmt.Errorf("endpoint %s reports no browser websocket", base)
			continue
		}

		var targets []devtoolsTarget
		if err := getJSON(probeCtx, client, base+"/json/list", &targets); err != nil {
			lastErr = err
			continue
		}
		target, ok := pickPageTarget(targets)
		if !ok {
			lastErr = fmt.Errorf("endpoint %s has no attachable page target", base)
			logger.Debug("No page target yet, browser may still be opening its first tab.")
			continue
		}

		logger.Info("Resolved remote browser.",
			zap.String("browser", version.Browser),
			zap.String("target_id", target.ID),
			zap.String("target_url", target.URL))
		return remoteEndpoint{
			BrowserWSURL: version.WebSocketDebuggerURL,
			TargetID:     target.ID,
			TargetURL:    target.URL,
		}, nil
	}
}

// pickPageTarget returns the first ordinary page. DevTools frontends and
// extension background pages advertise themselves as targets too and must
// be skipped.
func pickPageTarget(targets []devtoolsTarget) (devtoolsTarget, bool) {
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if strings.HasPrefix(t.URL, "devtools://") || strings.HasPrefix(t.URL, "chrome-extension://") {
			continue
		}
		return t, true
	}
	return devtoolsTarget{}, false
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build devtools request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("devtools endpoint returned %s for %s", resp.Status, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode devtools response from %s: %w", url, err)
	}
	return nil
}
