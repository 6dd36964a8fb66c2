package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmailish = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	rePhoneish = regexp.MustCompile(`\d[\d\s().-]{6,}\d`)
	reWebish   = regexp.MustCompile(`\bwww\.|https?://|\.(com|org|net|io)\b`)
)

// heuristicConfidence scores decoded text by how much it looks like a card.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reEmailish.MatchString(txtL) {
		score += 0.25
	}
	if rePhoneish.MatchString(txtL) {
		score += 0.2
	}
	if reWebish.MatchString(txtL) {
		score += 0.1
	}
	if strings.Count(txt, "\n") >= 2 {
		score += 0.1
	} // several lines
	if score > 1.0 {
		score = 1.0
	}
	return score
}
