package model

import (
	"strings"
	"time"
)

// Status classifies how a claim check ended
type Status string

const (
	StatusOK              Status = "ok"               // Verdict came from the model
	StatusWarning         Status = "warning"          // Input rejected before any model call
	StatusCredentialError Status = "credential_error" // API key missing or malformed
	StatusServiceError    Status = "service_error"    // Verdict model call failed
)

// Citation is a link the model listed in its verdict.
// Citations are labelled, never fetched.
type Citation struct {
	URL     string `json:"url"`
	Host    string `json:"host,omitempty"`
	Domain  string `json:"domain,omitempty"`   // Registrable domain (eTLD+1)
	InScope bool   `json:"in_scope,omitempty"` // Host falls inside the resolved source scope
	// Authority is the source tier: primary, secondary or tertiary
	Authority string `json:"authority,omitempty"`
}

// Outcome is the result of checking a single claim.
// Verdict is always populated; Counter is empty unless the verdict was
// classified as false and the counter-argument call succeeded.
type Outcome struct {
	ID           string     `json:"id"`
	Claim        string     `json:"claim"`
	Category     string     `json:"category,omitempty"`
	Scope        []string   `json:"scope,omitempty"`
	Verdict      string     `json:"verdict"`
	Counter      string     `json:"counter"`
	IsFalse      bool       `json:"is_false"`
	Status       Status     `json:"status"`
	Citations    []Citation `json:"citations,omitempty"`
	CounterError string     `json:"counter_error,omitempty"`
	Provider     string     `json:"provider,omitempty"`
	Model        string     `json:"model,omitempty"`
	TokensUsed   int        `json:"tokens_used,omitempty"`
	CheckedAt    time.Time  `json:"checked_at"`
	DurationMS   int64      `json:"duration_ms"`
}

// HasCounter reports whether a counter-argument was produced
func (o *Outcome) HasCounter() bool {
	return o.Counter != ""
}

// IsBlank reports whether a claim is empty after trimming whitespace
func IsBlank(claim string) bool {
	return strings.TrimSpace(claim) == ""
}
