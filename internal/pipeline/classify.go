package pipeline

import "strings"

type state int

const (
	stateDone state = iota
	stateNeedsCounter
)

func (s state) String() string {
	if s == stateNeedsCounter {
		return "needs_counter"
	}
	return "done"
}

// next is the transition out of the Verdict state
func next(isFalse, counterEnabled bool) state {
	if isFalse && counterEnabled {
		return stateNeedsCounter
	}
	return stateDone
}

// Classify reports whether a verdict marks the claim as false: the trimmed,
// lower-cased text starts with "no" or contains "credibility score: 50%".
//
// Other low scores ("credibility score: 10%") are deliberately not matched.
func Classify(verdict string) bool {
	v := strings.ToLower(strings.TrimSpace(verdict))
	return strings.HasPrefix(v, "no") || strings.Contains(v, "credibility score: 50%")
}
