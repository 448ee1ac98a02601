package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/ppiankov/factcheck/internal/model"
)

// Renderer renders outcomes as JSON, Markdown, HTML and terminal summaries
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders an outcome as a Markdown document
func (r *Renderer) Markdown(out *model.Outcome) string {
	var b strings.Builder

	b.WriteString("# Fact check\n\n")
	fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(strings.TrimSpace(out.Claim), "\n", "\n> "))

	if len(out.Scope) > 0 {
		fmt.Fprintf(&b, "**Sources:** %s\n\n", strings.Join(out.Scope, ", "))
	} else {
		b.WriteString("**Sources:** unrestricted\n\n")
	}

	b.WriteString("## Verdict\n\n")
	b.WriteString(out.Verdict)
	b.WriteString("\n\n")

	if out.HasCounter() {
		b.WriteString("## Counter-argument\n\n")
		b.WriteString(out.Counter)
		b.WriteString("\n\n")
	}

	if len(out.Citations) > 0 {
		b.WriteString("## Cited links\n\n")
		for _, c := range out.Citations {
			var notes []string
			if c.Authority != "" {
				notes = append(notes, c.Authority)
			}
			if !c.InScope && len(out.Scope) > 0 {
				notes = append(notes, "outside scope")
			}
			mark := ""
			if len(notes) > 0 {
				mark = " (" + strings.Join(notes, ", ") + ")"
			}
			fmt.Fprintf(&b, "- <%s>%s\n", c.URL, mark)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n*Status: %s", out.Status)
	if out.Model != "" {
		fmt.Fprintf(&b, " · Model: %s", out.Model)
	}
	b.WriteString("*\n")

	return b.String()
}

// HTML converts Markdown (typically a verdict) to HTML. Links open in a new tab.
// Raw HTML in the input is dropped, since verdicts often echo the user's claim.
func (r *Renderer) HTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})
	return string(markdown.Render(doc, renderer))
}

// WriteJSON writes the outcome as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, out *model.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return nil
}

// RenderJSON writes the outcome to a JSON file
func (r *Renderer) RenderJSON(out *model.Outcome, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return r.WriteJSON(f, out)
}

// RenderMarkdown writes the outcome to a Markdown file
func (r *Renderer) RenderMarkdown(out *model.Outcome, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(out)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, out *model.Outcome) {
	fmt.Fprintf(w, "\n%s\n\n", out.Verdict)

	if out.HasCounter() {
		fmt.Fprintf(w, "Counter-argument (%d chars):\n%s\n\n", len([]rune(out.Counter)), out.Counter)
	} else if out.IsFalse && out.CounterError != "" {
		fmt.Fprintf(w, "Counter-argument unavailable: %s\n\n", out.CounterError)
	}

	if len(out.Scope) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(out.Scope, ", "))
	}
	for _, c := range out.Citations {
		mark := "✓"
		if !c.InScope {
			mark = "·"
		}
		if c.Authority != "" {
			fmt.Fprintf(w, "  %s %s [%s]\n", mark, c.URL, c.Authority)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", mark, c.URL)
	}
}
