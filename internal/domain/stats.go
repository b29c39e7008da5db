// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"

	"github.com/dustin/go-humanize"
)

// ErrDegenerateScale is returned when the selected languages have a combined
// share of zero, so no proportional scale can be derived from them.
var ErrDegenerateScale = errors.New("degenerate language scale: selected languages have zero total share")

// Language is the usage of a single programming language across all of a user's repositories.
type Language struct {
	Name string `json:"name"`
	// Size is the number of bytes of code written in the language.
	Size int64 `json:"size"`
	// Prop is the language's share of all code, in percent, as computed by the provider.
	Prop float64 `json:"prop"`
	// Color is the display color. Empty when the provider has none.
	Color string `json:"color,omitempty"`
}

// OverviewCounts holds the raw counters an Overview is built from.
type OverviewCounts struct {
	Stars         int
	Forks         int
	Contributions int
	Additions     int
	Deletions     int
	Views         int
	Repos         int
}

// Overview is the summary badge data. Every count is already formatted
// with thousands separators.
type Overview struct {
	Name          string `json:"name"`
	Stars         string `json:"stars"`
	Forks         string `json:"forks"`
	Contributions string `json:"contributions"`
	LinesChanged  string `json:"lines_changed"`
	Views         string `json:"views"`
	Repos         string `json:"repos"`
}

// NewOverview formats the given counts into an Overview.
func NewOverview(name string, c OverviewCounts) Overview {
	return Overview{
		Name:          name,
		Stars:         comma(c.Stars),
		Forks:         comma(c.Forks),
		Contributions: comma(c.Contributions),
		LinesChanged:  comma(c.Additions + c.Deletions),
		Views:         comma(c.Views),
		Repos:         comma(c.Repos),
	}
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// LanguageBreakdown is the ranked top-N language usage of a user.
// Languages are ordered by descending size; Scale rescales their Prop values
// so that the displayed shares sum to 100.
type LanguageBreakdown struct {
	Languages []Language `json:"languages"`
	Scale     float64    `json:"scale"`
}

// Percentage returns the displayed share of l within the breakdown.
func (b LanguageBreakdown) Percentage(l Language) float64 {
	return l.Prop * b.Scale
}
