package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOverview(t *testing.T) {
	testCases := []struct {
		name     string
		counts   OverviewCounts
		expected Overview
	}{
		{
			name: "sums lines changed and groups thousands",
			counts: OverviewCounts{
				Stars:         1234567,
				Forks:         12,
				Contributions: 4321,
				Additions:     1234,
				Deletions:     321,
				Views:         0,
				Repos:         7,
			},
			expected: Overview{
				Name:          "octocat",
				Stars:         "1,234,567",
				Forks:         "12",
				Contributions: "4,321",
				LinesChanged:  "1,555",
				Views:         "0",
				Repos:         "7",
			},
		},
		{
			name:   "zero values",
			counts: OverviewCounts{},
			expected: Overview{
				Name:          "octocat",
				Stars:         "0",
				Forks:         "0",
				Contributions: "0",
				LinesChanged:  "0",
				Views:         "0",
				Repos:         "0",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NewOverview("octocat", tc.counts))
		})
	}
}

func TestLanguageBreakdown_Percentage(t *testing.T) {
	b := LanguageBreakdown{Scale: 2}
	assert.InDelta(t, 50.0, b.Percentage(Language{Prop: 25}), 1e-9)
}
