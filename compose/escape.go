package compose

import "strings"

// EscapeHTML escapes user-controlled text for inclusion in markup text
// nodes and attribute values. Ampersand is replaced first so entities
// produced by the later replacements are never double-escaped.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#039;")
	return s
}

// LineCount reports the number of display lines in text. A trailing
// newline terminates the last line instead of opening an empty one, so a
// whole-file capture does not get a numbered blank line at the bottom.
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n") + 1
	if strings.HasSuffix(text, "\n") {
		n--
	}
	return n
}
