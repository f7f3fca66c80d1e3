package browser

import (
	"fmt"

	json "github.com/json-iterator/go"
)

// Event types the agent forwards over the binding.
const (
	eventKey   = "key"
	eventClick = "click"
	eventLoad  = "load"
)

// pageEvent is the wire envelope the agent emits. One struct covers all
// event types; unused fields stay at their zero values.
type pageEvent struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	Editable  bool   `json:"editable"`
	Synthetic bool   `json:"synthetic"`
	Path      string `json:"path"`
}

// decodeEvent parses one binding payload. The agent is the only writer, but
// the payload still crossed a process boundary, so malformed input is an
// error to log rather than a reason to crash the pump.
func decodeEvent(payload string) (pageEvent, error) {
	var evt pageEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return pageEvent{}, fmt.Errorf("decode page event: %w", err)
	}
	if evt.Type == "" {
		return pageEvent{}, fmt.Errorf("page event missing type: %q", payload)
	}
	return evt, nil
}
