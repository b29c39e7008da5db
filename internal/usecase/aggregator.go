// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-stats-badges/internal/domain"
	"github.com/naka-gawa/github-stats-badges/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// TopLanguageCount is the number of languages kept in a LanguageBreakdown.
const TopLanguageCount = 10

// Aggregator is the use case for aggregating GitHub stats.
// It turns the provider's raw facts into the data the badges are rendered from.
type Aggregator struct {
	provider gateway.StatsProvider
	logger   *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(provider gateway.StatsProvider, logger *log.Logger) *Aggregator {
	return &Aggregator{
		provider: provider,
		logger:   logger,
	}
}

// ComputeOverview fetches all overview facts concurrently and formats them.
// The first provider error is returned unchanged.
func (a *Aggregator) ComputeOverview(ctx context.Context) (domain.Overview, error) {
	a.logger.Debug("Usecase: Computing overview...")

	var name string
	var counts domain.OverviewCounts

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		name, err = a.provider.Name(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		counts.Stars, err = a.provider.Stargazers(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		counts.Forks, err = a.provider.Forks(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		counts.Contributions, err = a.provider.TotalContributions(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		counts.Additions, counts.Deletions, err = a.provider.LinesChanged(egCtx)
		return err
	})

	eg.Go(func() error {
		var err error
		counts.Views, err = a.provider.Views(egCtx)
		return err
	})

	eg.Go(func() error {
		repos, err := a.provider.Repos(egCtx)
		counts.Repos = len(repos)
		return err
	})

	if err := eg.Wait(); err != nil {
		return domain.Overview{}, err
	}

	a.logger.Debug("Usecase: Overview complete.")
	return domain.NewOverview(name, counts), nil
}

// ComputeLanguageBreakdown selects the largest languages by size and derives
// the scale that makes their shares sum to 100.
func (a *Aggregator) ComputeLanguageBreakdown(ctx context.Context) (domain.LanguageBreakdown, error) {
	a.logger.Debug("Usecase: Computing language breakdown...")

	languages, err := a.provider.Languages(ctx)
	if err != nil {
		return domain.LanguageBreakdown{}, err
	}

	top := make([]domain.Language, len(languages))
	copy(top, languages)
	// Stable, so languages of equal size keep the provider's order.
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Size > top[j].Size
	})
	if len(top) > TopLanguageCount {
		top = top[:TopLanguageCount]
	}

	props := make(stats.Float64Data, len(top))
	for i, l := range top {
		props[i] = l.Prop
	}
	// Sum fails only on empty input, which is as degenerate as a zero sum.
	total, err := stats.Sum(props)
	if err != nil || total == 0 {
		return domain.LanguageBreakdown{}, fmt.Errorf("%w (%d languages selected)", domain.ErrDegenerateScale, len(top))
	}

	a.logger.Debug("Usecase: Language breakdown complete.", "languages", len(top))
	return domain.LanguageBreakdown{
		Languages: top,
		Scale:     100 / total,
	}, nil
}
