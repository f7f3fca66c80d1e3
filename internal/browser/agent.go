package browser

import (
	_ "embed"
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/feednav/feednav-cli/internal/config"
)

//go:embed agent.js
var agentJS string

// bindingName is the window property the agent calls to reach the Go side.
// Runtime.addBinding installs it in every execution context of the target.
const bindingName = "__feednavEmit"

// agentParams is the configuration prelude the agent reads at install time.
type agentParams struct {
	Binding        string `json:"binding"`
	HighlightClass string `json:"highlightClass"`
}

// buildAgentScript prepends the runtime parameters to the embedded agent so
// one script blob can be handed to AddScriptToEvaluateOnNewDocument.
func buildAgentScript(cfg config.PageConfig) (string, error) {
	blob, err := json.Marshal(agentParams{
		Binding:        bindingName,
		HighlightClass: cfg.HighlightClass,
	})
	if err != nil {
		return "", fmt.Errorf("marshal agent params: %w", err)
	}
	return "window.__feednavConfig = " + string(blob) + ";\n" + agentJS, nil
}
