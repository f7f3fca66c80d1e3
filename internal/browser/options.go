package browser

import (
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/feednav/feednav-cli/internal/config"
)

// execAllocatorOptions translates the browser config into chromedp
// allocator options for a locally launched Chrome.
func execAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Needed for stability in containers, where /dev/shm is tiny.
		chromedp.Flag("disable-dev-shm-usage", true),
		// Keeps navigator.webdriver unset so the host page serves the
		// same markup it serves a person.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)

	// The chromedp defaults run headless; showing a window means switching
	// the flag back off.
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	// Extra flags from the config file's 'args' slice.
	for _, arg := range cfg.Args {
		name, value := flagFromArg(arg)
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// flagFromArg splits one args entry into a chromedp flag name and value.
// Entries may carry a leading "--" and an optional "=value"; bare entries
// become boolean flags.
func flagFromArg(arg string) (string, any) {
	arg = strings.TrimPrefix(arg, "--")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}
