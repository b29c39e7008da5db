package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/naka-gawa/github-stats-badges/internal/presenter"
	"golang.org/x/sync/errgroup"
)

// BadgeKind identifies which data a badge is rendered from.
type BadgeKind string

const (
	OverviewBadge  BadgeKind = "overview"
	LanguagesBadge BadgeKind = "languages"
)

// Variant is one badge file: a kind in a light or dark color scheme.
type Variant struct {
	Kind BadgeKind
	Dark bool
}

// FileName is used for both the template and the generated badge.
func (v Variant) FileName() string {
	if v.Dark {
		return string(v.Kind) + "-dark.svg"
	}
	return string(v.Kind) + ".svg"
}

// Generator renders every badge variant and writes it to the output directory.
type Generator struct {
	aggregator *Aggregator
	templates  fs.FS
	outDir     string
	logger     *log.Logger
}

// NewGenerator creates a Generator reading templates from templates and writing into outDir.
func NewGenerator(aggregator *Aggregator, templates fs.FS, outDir string, logger *log.Logger) *Generator {
	return &Generator{
		aggregator: aggregator,
		templates:  templates,
		outDir:     outDir,
		logger:     logger,
	}
}

// Generate writes the overview and languages badges in both color schemes and
// returns the paths written. The two badge kinds are produced independently:
// if one fails, the other is still written and the first error is returned.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	g.logger.Info("Generating badges...", "output", g.outDir)
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Not errgroup.WithContext: a failing kind must not cancel the other.
	var eg errgroup.Group
	var overviewPaths, languagesPaths []string

	eg.Go(func() error {
		overview, err := g.aggregator.ComputeOverview(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute overview: %w", err)
		}
		overviewPaths, err = g.writeKind(OverviewBadge, func(tmpl string) string {
			return presenter.RenderOverview(overview, tmpl)
		})
		return err
	})

	eg.Go(func() error {
		breakdown, err := g.aggregator.ComputeLanguageBreakdown(ctx)
		if err != nil {
			return fmt.Errorf("failed to compute language breakdown: %w", err)
		}
		languagesPaths, err = g.writeKind(LanguagesBadge, func(tmpl string) string {
			return presenter.RenderLanguages(breakdown, tmpl)
		})
		return err
	})

	err := eg.Wait()
	written := append(overviewPaths, languagesPaths...)
	if err != nil {
		return written, err
	}
	g.logger.Info("Generated badges.", "files", len(written))
	return written, nil
}

// writeKind renders the light and dark variants of kind. Both templates are
// read before anything is written.
func (g *Generator) writeKind(kind BadgeKind, render func(tmpl string) string) ([]string, error) {
	variants := []Variant{{Kind: kind}, {Kind: kind, Dark: true}}

	outputs := make([]string, len(variants))
	for i, v := range variants {
		tmpl, err := fs.ReadFile(g.templates, v.FileName())
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", v.FileName(), err)
		}
		outputs[i] = render(string(tmpl))
	}

	var written []string
	for i, v := range variants {
		path := filepath.Join(g.outDir, v.FileName())
		if err := os.WriteFile(path, []byte(outputs[i]), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		g.logger.Debug("Wrote badge.", "path", path)
		written = append(written, path)
	}
	return written, nil
}
