package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"github.com/naka-gawa/github-stats-badges/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"overview.svg":       {Data: []byte("light {{ name }} {{ lines_changed }}")},
		"overview-dark.svg":  {Data: []byte("dark {{ name }} {{ repos }}")},
		"languages.svg":      {Data: []byte("light [{{ progress }}]")},
		"languages-dark.svg": {Data: []byte("dark [{{ progress }}]")},
	}
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestVariant_FileName(t *testing.T) {
	assert.Equal(t, "overview.svg", Variant{Kind: OverviewBadge}.FileName())
	assert.Equal(t, "languages-dark.svg", Variant{Kind: LanguagesBadge, Dark: true}.FileName())
}

func TestGenerator_Generate(t *testing.T) {
	provider := new(mockProvider)
	onOverview(provider, nil)
	provider.On("Languages", mock.Anything).Return([]domain.Language{
		{Name: "Go", Size: 10, Prop: 50, Color: "#00ADD8"},
	}, nil)

	outDir := filepath.Join(t.TempDir(), "generated")
	logger := log.New(io.Discard)
	generator := NewGenerator(NewAggregator(provider, logger), testTemplates(), outDir, logger)

	written, err := generator.Generate(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(outDir, "overview.svg"),
		filepath.Join(outDir, "overview-dark.svg"),
		filepath.Join(outDir, "languages.svg"),
		filepath.Join(outDir, "languages-dark.svg"),
	}, written)

	assert.Equal(t, "light The Octocat 1,555", readOutput(t, outDir, "overview.svg"))
	assert.Equal(t, "dark The Octocat 7", readOutput(t, outDir, "overview-dark.svg"))
	assert.Equal(t, `light [<span style="background-color: #00ADD8;width: 100.000%;" class="progress-item"></span>]`,
		readOutput(t, outDir, "languages.svg"))
	assert.Equal(t, `dark [<span style="background-color: #00ADD8;width: 100.000%;" class="progress-item"></span>]`,
		readOutput(t, outDir, "languages-dark.svg"))
}

func TestGenerator_Generate_FailingKindDoesNotBlockTheOther(t *testing.T) {
	provider := new(mockProvider)
	onOverview(provider, nil)
	provider.On("Languages", mock.Anything).Return([]domain.Language{{Name: "Go"}}, nil)

	outDir := t.TempDir()
	logger := log.New(io.Discard)
	generator := NewGenerator(NewAggregator(provider, logger), testTemplates(), outDir, logger)

	written, err := generator.Generate(context.Background())
	assert.ErrorIs(t, err, domain.ErrDegenerateScale)
	assert.Len(t, written, 2)

	assert.FileExists(t, filepath.Join(outDir, "overview.svg"))
	assert.FileExists(t, filepath.Join(outDir, "overview-dark.svg"))
	assert.NoFileExists(t, filepath.Join(outDir, "languages.svg"))
	assert.NoFileExists(t, filepath.Join(outDir, "languages-dark.svg"))
}

func TestGenerator_Generate_MissingTemplate(t *testing.T) {
	provider := new(mockProvider)
	onOverview(provider, nil)
	provider.On("Languages", mock.Anything).Return([]domain.Language{{Name: "Go", Size: 1, Prop: 100}}, nil)

	fsys := testTemplates()
	delete(fsys, "languages-dark.svg")
	outDir := t.TempDir()
	logger := log.New(io.Discard)
	generator := NewGenerator(NewAggregator(provider, logger), fsys, outDir, logger)

	_, err := generator.Generate(context.Background())
	assert.ErrorContains(t, err, "failed to read template languages-dark.svg")
	assert.NoFileExists(t, filepath.Join(outDir, "languages.svg"), "no variant of a kind is written when one template is missing")
}

func TestGenerator_Generate_EmbeddedTemplates(t *testing.T) {
	provider := new(mockProvider)
	onOverview(provider, nil)
	provider.On("Languages", mock.Anything).Return([]domain.Language{
		{Name: "Go", Size: 20, Prop: 40, Color: "#00ADD8"},
		{Name: "Makefile", Size: 10, Prop: 10},
	}, nil)

	outDir := t.TempDir()
	logger := log.New(io.Discard)
	generator := NewGenerator(NewAggregator(provider, logger), templates.FS, outDir, logger)

	written, err := generator.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 4)
	for _, path := range written {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "{{", path)
	}
	assert.Contains(t, readOutput(t, outDir, "languages-dark.svg"), `<span class="percent">80.00%</span>`)
}
