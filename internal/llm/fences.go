package llm

import (
	"regexp"
	"strings"
)

var reCodeFence = regexp.MustCompile("```json\\n?|\\n?```")

// StripCodeFences removes markdown code fences a model may wrap its JSON in.
func StripCodeFences(s string) string {
	return strings.TrimSpace(reCodeFence.ReplaceAllString(s, ""))
}
