package cmd

import (
	"bytes"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feednav/feednav-cli/internal/navigator"
)

func TestPrintInspectReport(t *testing.T) {
	report := inspectReport{
		Path:           "/home",
		Mode:           navigator.ModeFeed,
		ViewportHeight: 900,
		Posts: []inspectPost{
			{ID: "p1", Top: 100, Bottom: 400},
			{ID: "p2", Top: 700, Bottom: 1000},
		},
		FirstVisible: "p1",
	}

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	printInspectReport(cmd, report)

	s := out.String()
	assert.Contains(t, s, "/home (feed view), 2 posts, viewport 900px")
	assert.Contains(t, s, "> p1")
	assert.Contains(t, s, "\n  p2")
}

func TestPrintInspectReportNothingVisible(t *testing.T) {
	report := inspectReport{
		Path:           "/home",
		Mode:           navigator.ModeFeed,
		ViewportHeight: 900,
		Posts:          []inspectPost{{ID: "p1", Top: -500, Bottom: -100}},
	}

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	printInspectReport(cmd, report)

	assert.Contains(t, out.String(), "a session would start unfocused")
}

func TestInspectReportOmitsEmptyFirstVisible(t *testing.T) {
	blob, err := json.Marshal(inspectReport{Path: "/", Mode: navigator.ModeFeed})
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"mode":"feed"`)
	assert.NotContains(t, string(blob), "first_visible")
}
