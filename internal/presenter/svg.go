// Package presenter renders badge data into SVG templates.
//
// Templates are plain text with "{{ placeholder }}" tokens. Tokens are
// replaced literally in a single pass, so substituted values are never
// re-scanned for tokens and unknown tokens are left as they are.
package presenter

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

// DefaultColor is used for languages without a display color.
const DefaultColor = "#000000"

// Placeholder tokens recognized in templates.
const (
	NamePlaceholder          = "{{ name }}"
	StarsPlaceholder         = "{{ stars }}"
	ForksPlaceholder         = "{{ forks }}"
	ContributionsPlaceholder = "{{ contributions }}"
	LinesChangedPlaceholder  = "{{ lines_changed }}"
	ViewsPlaceholder         = "{{ views }}"
	ReposPlaceholder         = "{{ repos }}"
	ProgressPlaceholder      = "{{ progress }}"
	LangListPlaceholder      = "{{ lang_list }}"
)

// RenderOverview substitutes the overview placeholders in tmpl.
func RenderOverview(o domain.Overview, tmpl string) string {
	return strings.NewReplacer(
		NamePlaceholder, o.Name,
		StarsPlaceholder, o.Stars,
		ForksPlaceholder, o.Forks,
		ContributionsPlaceholder, o.Contributions,
		LinesChangedPlaceholder, o.LinesChanged,
		ViewsPlaceholder, o.Views,
		ReposPlaceholder, o.Repos,
	).Replace(tmpl)
}

// RenderLanguages substitutes the progress bar and the language list in tmpl.
// Both fragments follow the breakdown's order.
func RenderLanguages(b domain.LanguageBreakdown, tmpl string) string {
	var progress, list strings.Builder
	for _, l := range b.Languages {
		color := l.Color
		if color == "" {
			color = DefaultColor
		}
		percentage := b.Percentage(l)

		fmt.Fprintf(&progress,
			`<span style="background-color: %s;width: %.3f%%;" class="progress-item"></span>`,
			color, percentage)

		fmt.Fprintf(&list, `
<li>
    <svg xmlns="http://www.w3.org/2000/svg" class="octicon" style="fill:%s;"
    viewBox="0 0 16 16" version="1.1" width="16" height="16">
        <circle xmlns="http://www.w3.org/2000/svg" cx="8" cy="9" r="5" />
    </svg>
    <span class="lang">%s</span>
    <span class="percent">%.2f%%</span>
</li>

`, color, l.Name, percentage)
	}

	return strings.NewReplacer(
		ProgressPlaceholder, progress.String(),
		LangListPlaceholder, list.String(),
	).Replace(tmpl)
}
