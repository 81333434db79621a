package planner

import (
	"regexp"
	"strings"

	"github.com/mrz1836/clarifyflow/internal/domain"
)

// rule is one ambiguity signal: the topic must be present and the
// resolution absent for the signal to fire.
type rule struct {
	signal     domain.Signal
	topic      *regexp.Regexp
	resolution *regexp.Regexp
	reason     func(match string) string
}

//nolint:gochecknoglobals // compiled once, evaluated in order
var (
	// "non-negative" states a precondition, not what to do when it is violated.
	preconditionPattern = regexp.MustCompile(`non[- ]?negative`)

	rules = []rule{
		{
			signal:     domain.SignalNegativeInput,
			topic:      regexp.MustCompile(`\b(factorial|integers?|numbers?|counts?|quantity|quantities)\b|\bn!`),
			resolution: regexp.MustCompile(`\bnegative\b|out[- ]of[- ]range|\binvalid\b|less than zero|<\s*0`),
			reason: func(string) string {
				return "description involves quantities but does not specify behavior for negative input"
			},
		},
		{
			signal:     domain.SignalQuoting,
			topic:      regexp.MustCompile(`\b(csv|comma[- ]separated|tab[- ]separated|delimited|delimiters?)\b`),
			resolution: regexp.MustCompile(`quot|escap|embedded`),
			reason: func(string) string {
				return "delimited text parsing without quoting or escaping rules"
			},
		},
		{
			signal: domain.SignalVagueTerms,
			topic:  regexp.MustCompile(`\b(appropriately|as needed|as appropriate|reasonabl[ey]|maybe|possibly|might|ambiguous|properly|gracefully)\b`),
			reason: func(match string) string {
				return "vague terms without concrete rules: " + match
			},
		},
	}
)

// Detect returns every ambiguity signal matched by description, in
// evaluation order, together with the reason for the first match.
func Detect(description string) ([]domain.Signal, string) {
	lower := strings.ToLower(description)
	stripped := preconditionPattern.ReplaceAllString(lower, "")

	var (
		signals []domain.Signal
		reason  string
	)
	for _, r := range rules {
		text := lower
		if r.signal == domain.SignalNegativeInput {
			text = stripped
		}

		match := r.topic.FindString(text)
		if match == "" {
			continue
		}
		if r.resolution != nil && r.resolution.MatchString(text) {
			continue
		}

		signals = append(signals, r.signal)
		if reason == "" {
			reason = r.reason(match)
		}
	}
	return signals, reason
}
