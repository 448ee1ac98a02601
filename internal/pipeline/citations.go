package pipeline

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/scope"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"'<]+`)

// ExtractCitations pulls the URLs out of a verdict and labels each against
// the scope. Nothing is fetched.
func ExtractCitations(text string, sc scope.Scope) []model.Citation {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var citations []model.Citation
	for _, raw := range matches {
		// Clean up trailing punctuation
		raw = strings.TrimRight(raw, ".,;:!?*")
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true

		c := model.Citation{URL: raw}
		if u, err := url.Parse(raw); err == nil {
			c.Host = strings.ToLower(u.Hostname())
			c.Domain = scope.RegistrableDomain(c.Host)
			c.InScope = sc.Contains(c.Host)
		}
		citations = append(citations, c)
	}

	return citations
}
