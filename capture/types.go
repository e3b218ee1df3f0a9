package capture

import "errors"

// ErrEmptySelection is returned when a capture is requested for text that
// is empty or whitespace only.
var ErrEmptySelection = errors.New("capture: selection is empty")

// Request is one snippet to turn into a card.
type Request struct {
	// Text is the raw source text, exactly as selected.
	Text string

	// Language is the highlighter tag, e.g. "go" or "python". Empty means
	// detect from content.
	Language string

	// DisplayName is shown in the window chrome and seeds the export file
	// name, typically the source file's base name.
	DisplayName string

	// StartLine is the 1-based line number of the first selected line in
	// its source file. Values below 1 render as 1.
	StartLine int
}
