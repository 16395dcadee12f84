// Package report renders a native filesystem Status as a Markdown and HTML
// diagnostics document.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/CageChen/nativefs/internal/nativefs"
)

// Title is the top-level heading of every report.
const Title = "Native filesystem diagnostics"

// Markdown builds the report source for st.
func Markdown(st nativefs.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Title)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "Available", yesNo(st.Available))
	row(&b, "Platform", st.Platform)
	row(&b, "Library", code(st.Library))
	if st.Available {
		row(&b, "Loaded from", code(st.LoadedFrom))
	} else if reason := reasonOf(st); reason != "" {
		row(&b, "Reason", reason)
	}
	b.WriteString("\n")

	b.WriteString("## Installation layout\n\n")
	dirs, _ := json.MarshalIndent(st.Dirs, "", "  ")
	fmt.Fprintf(&b, "```json\n%s\n```\n\n", dirs)

	b.WriteString("## Candidates\n\n")
	if len(st.Candidates) == 0 {
		b.WriteString("No candidate paths were searched.\n\n")
	} else {
		for i, c := range st.Candidates {
			mark := ""
			if st.Available && c == st.LoadedFrom {
				mark = " (loaded)"
			}
			fmt.Fprintf(&b, "%d. `%s`%s\n", i+1, c, mark)
		}
		b.WriteString("\n")
	}

	var nf *nativefs.NotFoundError
	if errors.As(st.Err, &nf) {
		b.WriteString("## Search location\n\n")
		fmt.Fprintf(&b, "Content of `%s`:\n\n", nf.Dir)
		b.WriteString("```text\n")
		switch {
		case nf.Listing == nil:
			b.WriteString("<unreadable>\n")
		case len(nf.Listing) == 0:
			b.WriteString("<empty>\n")
		default:
			for _, name := range nf.Listing {
				b.WriteString(name + "\n")
			}
		}
		b.WriteString("```\n")
	}

	return b.String()
}

// Generate builds and renders the report for st.
func (r *Renderer) Generate(st nativefs.Status) (*Report, error) {
	return r.Render([]byte(Markdown(st)))
}

func reasonOf(st nativefs.Status) string {
	if st.Err != nil {
		return escapeCell(st.Err.Error())
	}
	return escapeCell(st.Reason)
}

func row(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", field, value)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
