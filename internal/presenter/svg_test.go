package presenter

import (
	"strings"
	"testing"

	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderOverview(t *testing.T) {
	overview := domain.Overview{
		Name:          "The Octocat",
		Stars:         "12,345",
		Forks:         "678",
		Contributions: "4,321",
		LinesChanged:  "1,555",
		Views:         "1,000,000",
		Repos:         "7",
	}

	testCases := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "every placeholder is replaced",
			template: "{{ name }}|{{ stars }}|{{ forks }}|{{ contributions }}|{{ lines_changed }}|{{ views }}|{{ repos }}",
			expected: "The Octocat|12,345|678|4,321|1,555|1,000,000|7",
		},
		{
			name:     "repeated placeholders are all replaced",
			template: "<title>{{ name }}</title><text>{{ name }}</text>",
			expected: "<title>The Octocat</title><text>The Octocat</text>",
		},
		{
			name:     "absent and unknown placeholders are left alone",
			template: "{{ stars }} {{ unknown }} {{stars}}",
			expected: "12,345 {{ unknown }} {{stars}}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RenderOverview(overview, tc.template))
		})
	}
}

func TestRenderOverview_ValuesAreNotRescanned(t *testing.T) {
	overview := domain.Overview{Name: "{{ stars }}", Stars: "1"}
	assert.Equal(t, "{{ stars }} 1", RenderOverview(overview, "{{ name }} {{ stars }}"))
}

func TestRenderLanguages(t *testing.T) {
	breakdown := domain.LanguageBreakdown{
		Languages: []domain.Language{
			{Name: "Go", Size: 900, Prop: 30, Color: "#00ADD8"},
			{Name: "Shell", Size: 100, Prop: 10},
		},
		Scale: 2.5,
	}

	t.Run("progress segments and list entries", func(t *testing.T) {
		out := RenderLanguages(breakdown, "<div>{{ progress }}</div><ul>{{ lang_list }}</ul>")

		assert.Contains(t, out, `<span style="background-color: #00ADD8;width: 75.000%;" class="progress-item"></span>`+
			`<span style="background-color: #000000;width: 25.000%;" class="progress-item"></span>`)
		assert.Contains(t, out, `<span class="lang">Go</span>`)
		assert.Contains(t, out, `<span class="percent">75.00%</span>`)
		assert.Contains(t, out, `<span class="percent">25.00%</span>`)
		assert.NotContains(t, out, "{{ progress }}")
		assert.NotContains(t, out, "{{ lang_list }}")
	})

	t.Run("missing color falls back in both fragments", func(t *testing.T) {
		out := RenderLanguages(breakdown, "{{ progress }}{{ lang_list }}")
		assert.Contains(t, out, "background-color: #000000;")
		assert.Contains(t, out, `style="fill:#000000;"`)
	})

	t.Run("list order matches progress order", func(t *testing.T) {
		out := RenderLanguages(breakdown, "{{ progress }}{{ lang_list }}")
		assert.Less(t, strings.Index(out, "#00ADD8;width"), strings.Index(out, "#000000;width"))
		assert.Less(t, strings.Index(out, ">Go<"), strings.Index(out, ">Shell<"))
	})

	t.Run("deterministic", func(t *testing.T) {
		tmpl := "{{ progress }}\n{{ lang_list }}"
		assert.Equal(t, RenderLanguages(breakdown, tmpl), RenderLanguages(breakdown, tmpl))
	})

	t.Run("only progress placeholder", func(t *testing.T) {
		out := RenderLanguages(breakdown, "before {{ progress }} after {{ name }}")
		assert.True(t, strings.HasPrefix(out, "before <span"))
		assert.True(t, strings.HasSuffix(out, "</span> after {{ name }}"))
	})

	t.Run("rounding", func(t *testing.T) {
		b := domain.LanguageBreakdown{
			Languages: []domain.Language{{Name: "C", Prop: 1, Color: "#555555"}},
			Scale:     100.0 / 3,
		}
		out := RenderLanguages(b, "{{ progress }}{{ lang_list }}")
		assert.Contains(t, out, "width: 33.333%;")
		assert.Contains(t, out, ">33.33%<")
	})
}
