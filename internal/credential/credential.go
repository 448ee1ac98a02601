package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which key rule was violated
type Kind int

const (
	KindMissing Kind = iota + 1
	KindPrefix
	KindWhitespace
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindPrefix:
		return "prefix"
	case KindWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Default key prefixes per provider. Empty means no prefix rule.
var defaultPrefixes = map[string]string{
	"openai":    "sk-proj-",
	"anthropic": "sk-ant-",
	"claude":    "sk-ant-",
}

// DefaultPrefix returns the expected key prefix for a provider
func DefaultPrefix(provider string) string {
	return defaultPrefixes[strings.ToLower(provider)]
}

// Error describes an invalid API key. The message is user-facing.
type Error struct {
	Kind   Kind
	Prefix string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissing:
		return "No API key was found. Please check your .env file."
	case KindPrefix:
		return fmt.Sprintf("API key doesn't start with %s. Please check you're using the right key.", e.Prefix)
	case KindWhitespace:
		return "An API key was found, but it looks like it might have space or tab characters at the start or end"
	default:
		return "API key is invalid"
	}
}

// IsKind reports whether err is a credential error of kind k
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

// Validate checks key against the rules, in order: present, starts with
// prefix (skipped when prefix is empty), no leading or trailing whitespace.
func Validate(key, prefix string) error {
	if key == "" {
		return &Error{Kind: KindMissing}
	}
	if prefix != "" && !strings.HasPrefix(key, prefix) {
		return &Error{Kind: KindPrefix, Prefix: prefix}
	}
	if strings.TrimSpace(key) != key {
		return &Error{Kind: KindWhitespace}
	}
	return nil
}
