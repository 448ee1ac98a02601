package scope

import (
	"net"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Selector names a source scope: either a topical category or one of the
// constrained/unconstrained flag values.
type Selector string

// Category selectors
const (
	General       Selector = "general"
	USPolitics    Selector = "us_politics"
	USLegislation Selector = "us_legislation"
	EconomyLabor  Selector = "economy_labor"
	PublicHealth  Selector = "public_health"
	Medicine      Selector = "medicine"
	Research      Selector = "research"
)

// Flag selectors
const (
	Constrained   Selector = "constrained"
	Unconstrained Selector = "unconstrained"
)

// Each entry is exactly two curated domains.
var table = map[Selector][2]string{
	General:       {"reuters.com", "apnews.com"},
	USPolitics:    {"factcheck.org", "politifact.com"},
	USLegislation: {"congress.gov", "govtrack.us"},
	EconomyLabor:  {"bls.gov", "fred.stlouisfed.org"},
	PublicHealth:  {"cdc.gov", "who.int"},
	Medicine:      {"pubmed.ncbi.nlm.nih.gov", "medlineplus.gov"},
	Research:      {"arxiv.org", "nature.com"},
	Constrained:   {"factcheck.org", "who.int"},
}

var categories = []Selector{
	General,
	USPolitics,
	USLegislation,
	EconomyLabor,
	PublicHealth,
	Medicine,
	Research,
}

// FromFlag maps the boolean variant onto a selector
func FromFlag(constrained bool) Selector {
	if constrained {
		return Constrained
	}
	return Unconstrained
}

// Normalize trims and lower-cases a raw selector
func Normalize(raw string) Selector {
	return Selector(strings.ToLower(strings.TrimSpace(raw)))
}

// Categories returns the category selectors in a stable order
func Categories() []Selector {
	return slices.Clone(categories)
}

// IsCategory reports whether s is one of the topical categories
func IsCategory(s Selector) bool {
	return slices.Contains(categories, Normalize(string(s)))
}

// Known reports whether s resolves to a table entry or a flag value
func Known(s Selector) bool {
	s = Normalize(string(s))
	if s == Unconstrained {
		return true
	}
	_, ok := table[s]
	return ok
}

// Label returns a bounded label for metrics. Unknown selectors collapse to "other".
func Label(s Selector) string {
	s = Normalize(string(s))
	switch {
	case s == "":
		return "none"
	case Known(s):
		return string(s)
	default:
		return "other"
	}
}

// Resolve maps a selector to its source scope.
// Unknown and empty selectors resolve to the empty (unrestricted) scope.
func Resolve(s Selector) Scope {
	pair, ok := table[Normalize(string(s))]
	if !ok {
		return Scope{}
	}
	return New(pair[0], pair[1])
}

// Scope is an ordered, immutable list of trusted domains.
// The zero value is the empty scope and means "no restriction".
type Scope struct {
	domains []string
}

// New builds a scope from domains, dropping blanks and duplicates
func New(domains ...string) Scope {
	var out []string
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	return Scope{domains: out}
}

// Domains returns a copy of the scope's domains
func (s Scope) Domains() []string {
	return slices.Clone(s.domains)
}

// Empty reports whether the scope places no restriction on sources
func (s Scope) Empty() bool {
	return len(s.domains) == 0
}

// Len returns the number of domains
func (s Scope) Len() int {
	return len(s.domains)
}

// Qualifiers returns one "site:<domain>" token per domain
func (s Scope) Qualifiers() []string {
	out := make([]string, 0, len(s.domains))
	for _, d := range s.domains {
		out = append(out, "site:"+d)
	}
	return out
}

// Join joins the qualifiers with sep
func (s Scope) Join(sep string) string {
	return strings.Join(s.Qualifiers(), sep)
}

// Contains reports whether host belongs to one of the scope domains,
// either exactly, as a subdomain, or by sharing a registrable domain
// with a scope entry that is itself registrable (e.g. www.cdc.gov).
func (s Scope) Contains(host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	reg := RegistrableDomain(host)
	for _, d := range s.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
		if reg != "" && reg == d {
			return true
		}
	}
	return false
}

func (s Scope) String() string {
	if s.Empty() {
		return "unrestricted"
	}
	return strings.Join(s.domains, ", ")
}

// RegistrableDomain returns the eTLD+1 of host, or "" when it has none
// (bare public suffixes, IP addresses, single labels).
func RegistrableDomain(host string) string {
	host = normalizeHost(host)
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return d
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
