package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

var (
	reEmail   = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	rePhone   = regexp.MustCompile(`\+?\d{1,3}[\s-]?\(?\d{2,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}`)
	reCapWord = regexp.MustCompile(`^[A-Z]`)
)

// RegexExtractor is the offline fallback. It is pure and never fails.
type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor { return &RegexExtractor{} }

// Extract builds a card from raw OCR text.
func (RegexExtractor) Extract(text string) entity.Card {
	lines := splitLines(text)
	emails := nonNil(reEmail.FindAllString(text, -1))
	phones := nonNil(rePhone.FindAllString(text, -1))

	name := guessName(lines, emails, phones)

	exclude := make(map[string]struct{}, 1+len(emails)+len(phones))
	exclude[name] = struct{}{}
	for _, e := range emails {
		exclude[e] = struct{}{}
	}
	for _, p := range phones {
		exclude[p] = struct{}{}
	}
	other := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, skip := exclude[l]; !skip {
			other = append(other, l)
		}
	}

	card := entity.Card{
		Name:   name,
		Phones: phones,
		Email:  constants.NotAvailable,
		Other:  other,
	}
	if card.Name == "" {
		card.Name = constants.NotAvailable
	}
	if len(emails) > 0 {
		card.Email = emails[0]
	}
	return card
}

// splitLines splits on '\n', trims each line and drops empty ones.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// guessName picks the line with the most capitalised words, ignoring lines
// that are an email or carry a phone number. Ties keep the earlier line. When
// no line has a capitalised word the first candidate wins.
func guessName(lines, emails, phones []string) string {
	var candidates []string
	for _, l := range lines {
		if contains(emails, l) || containsAnyIn(l, phones) {
			continue
		}
		candidates = append(candidates, l)
	}

	best, bestScore := "", -1
	for _, l := range candidates {
		score := 0
		for _, w := range strings.Fields(l) {
			if reCapWord.MatchString(w) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = l, score
		}
	}
	if bestScore > 0 {
		return best
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAnyIn(line string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
