package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve_Categories(t *testing.T) {
	tests := []struct {
		selector Selector
		want     []string
	}{
		{General, []string{"reuters.com", "apnews.com"}},
		{USPolitics, []string{"factcheck.org", "politifact.com"}},
		{USLegislation, []string{"congress.gov", "govtrack.us"}},
		{EconomyLabor, []string{"bls.gov", "fred.stlouisfed.org"}},
		{PublicHealth, []string{"cdc.gov", "who.int"}},
		{Medicine, []string{"pubmed.ncbi.nlm.nih.gov", "medlineplus.gov"}},
		{Research, []string{"arxiv.org", "nature.com"}},
		{Constrained, []string{"factcheck.org", "who.int"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.selector), func(t *testing.T) {
			got := Resolve(tt.selector)
			if diff := cmp.Diff(tt.want, got.Domains()); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.selector, diff)
			}
			if got.Len() != 2 {
				t.Errorf("Expected exactly 2 domains, got %d", got.Len())
			}
		})
	}
}

func TestResolve_UnknownIsUnrestricted(t *testing.T) {
	for _, sel := range []Selector{"", "astrology", "unconstrained", "  ", "GENERAL_NEWS"} {
		got := Resolve(sel)
		if !got.Empty() {
			t.Errorf("Resolve(%q) = %v, want empty scope", sel, got.Domains())
		}
	}
}

func TestResolve_Normalizes(t *testing.T) {
	got := Resolve("  Medicine ")
	want := []string{"pubmed.ncbi.nlm.nih.gov", "medlineplus.gov"}
	if diff := cmp.Diff(want, got.Domains()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_DoesNotAliasTable(t *testing.T) {
	first := Resolve(PublicHealth).Domains()
	first[0] = "evil.example"

	again := Resolve(PublicHealth).Domains()
	if again[0] != "cdc.gov" {
		t.Errorf("table was mutated through returned slice: %v", again)
	}
}

func TestFromFlag(t *testing.T) {
	if FromFlag(true) != Constrained {
		t.Errorf("FromFlag(true) = %q", FromFlag(true))
	}
	if FromFlag(false) != Unconstrained {
		t.Errorf("FromFlag(false) = %q", FromFlag(false))
	}
	if !Resolve(FromFlag(false)).Empty() {
		t.Error("unconstrained flag should resolve to empty scope")
	}
}

func TestCategories_StableOrder(t *testing.T) {
	want := []Selector{General, USPolitics, USLegislation, EconomyLabor, PublicHealth, Medicine, Research}
	if diff := cmp.Diff(want, Categories()); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}

	c := Categories()
	c[0] = "mutated"
	if Categories()[0] != General {
		t.Error("Categories() should return a copy")
	}
}

func TestIsCategory(t *testing.T) {
	if !IsCategory("Research") {
		t.Error("Research should be a category")
	}
	if IsCategory(Constrained) {
		t.Error("constrained is a flag, not a category")
	}
	if IsCategory("sports") {
		t.Error("sports is not a category")
	}
}

func TestLabel(t *testing.T) {
	tests := map[Selector]string{
		"":              "none",
		"medicine":      "medicine",
		"unconstrained": "unconstrained",
		"constrained":   "constrained",
		"weather":       "other",
	}
	for sel, want := range tests {
		if got := Label(sel); got != want {
			t.Errorf("Label(%q) = %q, want %q", sel, got, want)
		}
	}
}

func TestScope_Qualifiers(t *testing.T) {
	s := Resolve(Medicine)

	want := []string{"site:pubmed.ncbi.nlm.nih.gov", "site:medlineplus.gov"}
	if diff := cmp.Diff(want, s.Qualifiers()); diff != "" {
		t.Errorf("Qualifiers mismatch (-want +got):\n%s", diff)
	}
	if got := s.Join(" AND/OR "); got != "site:pubmed.ncbi.nlm.nih.gov AND/OR site:medlineplus.gov" {
		t.Errorf("Join = %q", got)
	}
	if got := (Scope{}).Join(" OR "); got != "" {
		t.Errorf("empty Join = %q", got)
	}
}

func TestNew_DropsBlanksAndDuplicates(t *testing.T) {
	s := New("CDC.gov", " ", "cdc.gov", "who.int")
	if diff := cmp.Diff([]string{"cdc.gov", "who.int"}, s.Domains()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScope_Contains(t *testing.T) {
	s := Resolve(PublicHealth)
	med := Resolve(Medicine)

	tests := []struct {
		name  string
		scope Scope
		host  string
		want  bool
	}{
		{"exact", s, "cdc.gov", true},
		{"subdomain", s, "www.cdc.gov", true},
		{"with port", s, "www.who.int:443", true},
		{"upper case", s, "WWW.CDC.GOV", true},
		{"unrelated", s, "example.com", false},
		{"lookalike suffix", s, "notcdc.gov", false},
		{"deep scope entry", med, "pubmed.ncbi.nlm.nih.gov", true},
		{"sibling of deep entry", med, "www.ncbi.nlm.nih.gov", false},
		{"empty host", s, "", false},
		{"empty scope", Scope{}, "cdc.gov", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Contains(tt.host); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := map[string]string{
		"www.bbc.co.uk":           "bbc.co.uk",
		"pubmed.ncbi.nlm.nih.gov": "nih.gov",
		"fred.stlouisfed.org":     "stlouisfed.org",
		"127.0.0.1":               "",
		"com":                     "",
		"":                        "",
	}
	for host, want := range tests {
		if got := RegistrableDomain(host); got != want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestScope_String(t *testing.T) {
	if got := (Scope{}).String(); got != "unrestricted" {
		t.Errorf("String() = %q", got)
	}
	if got := Resolve(Research).String(); got != "arxiv.org, nature.com" {
		t.Errorf("String() = %q", got)
	}
}
