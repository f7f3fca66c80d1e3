package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feednav/feednav-cli/internal/observability"
)

// newPristineRootCmd returns a fresh command tree with clean global state,
// so config bindings from one test cannot leak into the next.
func newPristineRootCmd(t *testing.T) *cobra.Command {
	t.Helper()
	viper.Reset()
	observability.ResetForTest()
	t.Cleanup(viper.Reset)
	return NewRootCommand()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newPristineRootCmd(t)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootWithoutArgsPrintsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "vim-style keyboard navigation")
	assert.Contains(t, out, "Usage:")
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "vim-style keyboard navigation")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "inspect")
}

func TestRootVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRunRequiresTarget(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url argument is required")
}

func TestRunRejectsExtraArgs(t *testing.T) {
	_, err := execute(t, "run", "https://bsky.app/", "extra")
	require.Error(t, err)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "feednav.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("page:\n  header_offset_px: 80\n"), 0o644))

	// The command still refuses to run without a target, but by then the
	// config file has been merged into viper.
	_, err := execute(t, "--config", cfgPath, "run")
	require.Error(t, err)
	assert.Equal(t, 80.0, viper.GetFloat64("page.header_offset_px"))
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("FEEDNAV_PAGE_HIGHLIGHT_CLASS", "nav-ring")

	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Equal(t, "nav-ring", viper.GetString("page.highlight_class"))
}

func TestFlagOverridesConfig(t *testing.T) {
	_, err := execute(t, "run", "--header-offset", "96")
	require.Error(t, err)
	assert.Equal(t, 96.0, viper.GetFloat64("page.header_offset_px"))
}
