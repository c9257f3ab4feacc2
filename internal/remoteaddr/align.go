package remoteaddr

import "strings"

// AlignTextCenter indents text with leading spaces so it appears
// centered within width columns. When text is at least as wide as
// width, it is returned unchanged (no truncation, no indent).
func AlignTextCenter(text string, width int) string {
	indent := 0
	if width >= len(text) {
		indent = (width - len(text)) / 2
	}
	return strings.TrimRight(strings.Repeat(" ", indent)+text, " ")
}
