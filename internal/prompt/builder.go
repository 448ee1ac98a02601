package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/scope"
)

// Strategy controls where a source restriction is placed
type Strategy string

const (
	// StrategySystem states the restriction in the system instruction only
	StrategySystem Strategy = "system"
	// StrategyQuery appends "site:a OR site:b" to the user message
	StrategyQuery Strategy = "query"
)

// DefaultCounterLimit is the character budget for a counter-argument
const DefaultCounterLimit = 280

// ParseStrategy converts a config value to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySystem, "":
		return StrategySystem, nil
	case StrategyQuery:
		return StrategyQuery, nil
	default:
		return "", fmt.Errorf("unknown scope strategy: %s (supported: system, query)", s)
	}
}

// Payload is the two-message conversation for one model call
type Payload struct {
	System llm.Message
	User   llm.Message
}

// Messages returns the payload in send order
func (p Payload) Messages() []llm.Message {
	return []llm.Message{p.System, p.User}
}

// Builder produces verdict and counter-argument payloads.
// It holds no mutable state; output depends only on its inputs.
type Builder struct {
	strategy     Strategy
	counterLimit int
}

// NewBuilder creates a builder. A non-positive limit uses DefaultCounterLimit.
func NewBuilder(strategy Strategy, counterLimit int) *Builder {
	if strategy == "" {
		strategy = StrategySystem
	}
	if counterLimit <= 0 {
		counterLimit = DefaultCounterLimit
	}
	return &Builder{strategy: strategy, counterLimit: counterLimit}
}

// Strategy returns the configured scope strategy
func (b *Builder) Strategy() Strategy {
	return b.strategy
}

// CounterLimit returns the configured counter-argument budget
func (b *Builder) CounterLimit() int {
	return b.counterLimit
}

const verdictRole = `You are a fact-checking analyst. Assess whether the user's claim is true.

Your answer MUST:
1. Begin with an explicit verdict: "Yes" if the claim is accurate, "No" if it is not.
2. Give a short explanation of the evidence.
3. State a credibility score as a percentage, formatted exactly as "Credibility score: N%".
4. List the source links you relied on, verbatim, one per line.`

// Verdict builds the verdict-stage payload for claim under sc
func (b *Builder) Verdict(claim string, sc scope.Scope) Payload {
	var system strings.Builder
	system.WriteString(verdictRole)
	system.WriteString("\n\n")

	user := claim
	switch {
	case sc.Empty():
		system.WriteString("No limitation on credible sites to use.")
	case b.strategy == StrategyQuery:
		system.WriteString("Restrict your research to the site: qualifiers included with the claim.")
		user = claim + " " + sc.Join(" OR ")
	default:
		system.WriteString("Only use the following sources: ")
		system.WriteString(sc.Join(" AND/OR "))
	}

	return Payload{
		System: llm.Message{Role: llm.RoleSystem, Content: system.String()},
		User:   llm.Message{Role: llm.RoleUser, Content: user},
	}
}

const counterRole = "You are a respectful fact-checker who writes short, factual replies for social media."

// Counter builds the counter-argument payload for a claim judged false
func (b *Builder) Counter(claim string) Payload {
	user := fmt.Sprintf(
		"Write a respectful, factual correction to the following claim, under %d characters, ready to copy and paste as a social media reply. Reply with the correction text only.\n\nClaim: %q",
		b.counterLimit, claim,
	)

	return Payload{
		System: llm.Message{Role: llm.RoleSystem, Content: counterRole},
		User:   llm.Message{Role: llm.RoleUser, Content: user},
	}
}
