package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/feednav/feednav-cli/internal/config"
)

func TestFlagFromArg(t *testing.T) {
	tests := []struct {
		arg      string
		wantName string
		wantVal  any
	}{
		{"--no-zygote", "no-zygote", true},
		{"no-zygote", "no-zygote", true},
		{"--proxy-server=socks5://localhost:1080", "proxy-server", "socks5://localhost:1080"},
		{"lang=en-US", "lang", "en-US"},
		// Only the first '=' splits; the rest belongs to the value.
		{"--force-fieldtrials=Group=A", "force-fieldtrials", "Group=A"},
		{"--flag=", "flag", ""},
	}
	for _, tc := range tests {
		name, value := flagFromArg(tc.arg)
		assert.Equalf(t, tc.wantName, name, "arg %q", tc.arg)
		assert.Equalf(t, tc.wantVal, value, "arg %q", tc.arg)
	}
}

// The options themselves are opaque closures, so composition is checked by
// count against the chromedp defaults.
func TestExecAllocatorOptionsComposition(t *testing.T) {
	minimal := config.BrowserConfig{
		Headless:     true,
		WindowWidth:  1280,
		WindowHeight: 900,
	}
	baseline := len(chromedp.DefaultExecAllocatorOptions) + 3
	assert.Len(t, execAllocatorOptions(minimal), baseline)

	cfg := minimal
	cfg.Headless = false
	cfg.DisableGPU = true
	cfg.NoSandbox = true
	cfg.ExecPath = "/usr/bin/chromium"
	cfg.UserDataDir = "/tmp/feednav-profile"
	cfg.Args = []string{"--no-zygote", "--proxy-server=socks5://localhost:1080"}

	assert.Len(t, execAllocatorOptions(cfg), baseline+7)
}
