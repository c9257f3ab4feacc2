// Package strings holds small text-formatting helpers shared by the
// transfer engine's log lines.
package strings

// Pluralize appends "s" to word unless count is exactly one. It has no
// notion of irregular plurals; callers that need one pass the already
// pluralized noun and a count of something other than 1.
func Pluralize(word string, count int64) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
