package navigator

// Keys the dispatcher reacts to. Values are KeyboardEvent.key strings and
// are case sensitive: a shifted "J" is not a navigation key.
const (
	KeyNext = "j"
	KeyPrev = "k"
	KeyLike = "l"
	KeyOpen = "Enter"
)

// KeyEvent is one keydown observed in the host document. Path is the
// navigation path at dispatch time; the view mode is derived from it fresh
// for every event, since single-page navigation changes the path without a
// document load.
type KeyEvent struct {
	Key      string
	Editable bool
	Path     string
}

// ClickEvent is a document-level click. Synthetic is set when the page
// marked the click as script-issued at dispatch time.
type ClickEvent struct {
	Synthetic bool
	Path      string
}

// LoadEvent fires once per document load.
type LoadEvent struct {
	Path string
}
