package text

import (
	"regexp"
	"strings"
)

// Matches a sentence start or a standalone "i"; must run on lower-cased text.
var basicCapitals = regexp.MustCompile(`(^|[?!.])\s*?([a-z])|(^|[^a-z])i($|[^a-z])`)

// Capitalize normalizes recognizer casing for English: everything is lower-cased,
// then sentence starts and the pronoun "I" are upper-cased.
func Capitalize(message string) string {
	return basicCapitals.ReplaceAllStringFunc(strings.ToLower(message), strings.ToUpper)
}
