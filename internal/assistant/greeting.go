package assistant

import "strings"

// greetings is the closed set of phrases answered without a prediction call.
// Matching is exact after lower-casing and trimming; "hii" or "good afternoon"
// are treated as symptom descriptions.
var greetings = map[string]struct{}{
	"hi":            {},
	"hi there":      {},
	"hello chatbot": {},
	"hello":         {},
	"hey":           {},
	"wow":           {},
	"ok":            {},
	"okay":          {},
	"thanks":        {},
	"thank you":     {},
	"good morning":  {},
	"good evening":  {},
}

// IsGreeting reports whether text is one of the recognised small-talk phrases.
func IsGreeting(text string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
