package novel

import "strings"

// ContinuePrompt is the fixed user turn sent for every generation after
// the first; the system instruction tells the model to hold the next page
// until it sees this exact phrase.
const ContinuePrompt = "次のページ"

// endMarker flags a concluded narrative. The closing paren is left off so
// the check still matches after trailing-character trimming.
const endMarker = "(終わり"

// trimCutset lists the characters stripped from the end of generated
// text: trailing newlines and any dangling echo of the continue prompt.
const trimCutset = "\n(次のページ)"

// DetectEnd reports whether text contains the completion marker and
// returns the text with trailing cutset characters removed. The trim is a
// suffix character-set trim, not substring removal, so only a trailing
// run of cutset members disappears.
func DetectEnd(text string) (string, bool) {
	finished := strings.Contains(text, endMarker)
	return strings.TrimRight(text, trimCutset), finished
}
