package authority

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// Tier is the authority classification of a cited source
type Tier int

const (
	TierUnknown   Tier = 0 // Not yet classified
	TierPrimary   Tier = 1 // Government, intergovernmental and academic sources
	TierSecondary Tier = 2 // Wire services, fact-checkers, major publishers
	TierTertiary  Tier = 3 // Everything else
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Classifier classifies cited URLs into authority tiers.
// It only looks at the URL; nothing is fetched.
type Classifier struct {
	domainMap    map[string]Tier
	primaryMap   map[string]bool
	secondaryMap map[string]bool
	pathPatterns []*compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    Tier
}

// NewClassifier creates a classifier from config. Invalid path patterns
// are skipped.
func NewClassifier(config model.AuthorityConfig) *Classifier {
	classifier := &Classifier{
		domainMap:    make(map[string]Tier, len(config.DomainMap)),
		primaryMap:   make(map[string]bool, len(config.PrimaryDomains)),
		secondaryMap: make(map[string]bool, len(config.SecondaryDomains)),
	}

	for domain, tier := range config.DomainMap {
		classifier.domainMap[strings.ToLower(domain)] = ParseTier(tier)
	}
	for _, domain := range config.PrimaryDomains {
		classifier.primaryMap[strings.ToLower(domain)] = true
	}
	for _, domain := range config.SecondaryDomains {
		classifier.secondaryMap[strings.ToLower(domain)] = true
	}

	// Compile path patterns
	for _, pp := range config.PathPatterns {
		if re, err := regexp.Compile(pp.Pattern); err == nil {
			classifier.pathPatterns = append(classifier.pathPatterns, &compiledPattern{
				pattern: re,
				tier:    ParseTier(pp.Tier),
			})
		}
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *Classifier) Classify(rawURL string) Tier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return TierTertiary
	}

	host := strings.ToLower(parsed.Hostname())

	// Explicit mappings win
	if tier, ok := a.domainMap[host]; ok {
		return tier
	}

	if matchesDomain(host, a.primaryMap) {
		return TierPrimary
	}
	if matchesDomain(host, a.secondaryMap) {
		return TierSecondary
	}

	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".mil") || strings.HasSuffix(host, ".ac.uk") {
		return TierPrimary
	}

	return TierTertiary
}

// Label sets the Authority field of each citation in place
func (a *Classifier) Label(citations []model.Citation) {
	for i := range citations {
		citations[i].Authority = a.Classify(citations[i].URL).String()
	}
}

// matchesDomain reports whether host equals or is a subdomain of any entry
func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// ParseTier converts a tier name or number to a Tier. Unknown values are tertiary.
func ParseTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	default:
		return TierTertiary
	}
}
