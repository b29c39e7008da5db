// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/go-enry/go-enry/v2"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/github-stats-badges/internal/domain"
)

// StatsProvider defines the aggregate facts about a user that the badges are built from.
// Every method may block on the network; results are computed once and cached.
type StatsProvider interface {
	Name(ctx context.Context) (string, error)
	Stargazers(ctx context.Context) (int, error)
	Forks(ctx context.Context) (int, error)
	TotalContributions(ctx context.Context) (int, error)
	// LinesChanged returns the user's total additions and deletions.
	LinesChanged(ctx context.Context) (additions, deletions int, err error)
	Views(ctx context.Context) (int, error)
	Repos(ctx context.Context) ([]string, error)
	// Languages returns language usage in the order languages were first seen.
	Languages(ctx context.Context) ([]domain.Language, error)
}

// Options configures which data the GitHubGateway collects.
type Options struct {
	User  string
	Token string
	// ExcludeRepos holds "owner/name" identifiers to skip.
	ExcludeRepos []string
	// ExcludeLangs holds language names to skip, compared case-insensitively.
	ExcludeLangs      []string
	IgnoreForkedRepos bool
	// FillLanguageColors assigns linguist colors to languages GitHub returns without one.
	FillLanguageColors bool
	// RetryAttempts bounds how often a 202 from the statistics API is retried.
	RetryAttempts uint
	RetryDelay    time.Duration
	// Concurrency bounds the per-repository REST requests in flight.
	Concurrency int
}

const (
	defaultRetryAttempts = 10
	defaultRetryDelay    = 2 * time.Second
	defaultConcurrency   = 8
)

// GitHubGateway is the concrete implementation of the StatsProvider interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
	opts          Options
	excludeRepos  map[string]struct{}
	excludeLangs  map[string]struct{}

	summary       memo[repoSummary]
	contributions memo[int]
	lines         memo[lineCounts]
	views         memo[int]
}

// repoSummary holds everything derived from the repository overview query.
type repoSummary struct {
	name      string
	stars     int
	forks     int
	repos     []string
	languages []domain.Language
}

type lineCounts struct {
	additions int
	deletions int
}

type repoNode struct {
	NameWithOwner string
	Stargazers    struct {
		TotalCount int
	}
	ForkCount int
	Languages struct {
		Edges []struct {
			Size int64
			Node struct {
				Name  string
				Color *string
			}
		}
	} `graphql:"languages(first: 10, orderBy: {field: SIZE, direction: DESC})"`
}

type repoConnection struct {
	PageInfo struct {
		HasNextPage bool
		EndCursor   githubv4.String
	}
	Nodes []repoNode
}

// reposOverviewQuery pages through owned and contributed-to repositories in lockstep.
type reposOverviewQuery struct {
	Viewer struct {
		Login                     string
		Name                      *string
		Repositories              repoConnection `graphql:"repositories(first: 100, orderBy: {field: UPDATED_AT, direction: DESC}, isFork: false, after: $ownedCursor)"`
		RepositoriesContributedTo repoConnection `graphql:"repositoriesContributedTo(first: 100, includeUserRepositories: false, orderBy: {field: UPDATED_AT, direction: DESC}, contributionTypes: [COMMIT, PULL_REQUEST, REPOSITORY, PULL_REQUEST_REVIEW], after: $contribCursor)"`
	}
}

type contributionYearsQuery struct {
	Viewer struct {
		ContributionsCollection struct {
			ContributionYears []int
		}
	}
}

type contributionCalendarQuery struct {
	Viewer struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *log.Logger) (StatsProvider, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGateway(github.NewClient(httpClient), githubv4.NewClient(httpClient), opts, logger), nil
}

func newGateway(restClient *github.Client, graphqlClient *githubv4.Client, opts Options, logger *log.Logger) *GitHubGateway {
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	g := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
		opts:          opts,
		excludeRepos:  make(map[string]struct{}, len(opts.ExcludeRepos)),
		excludeLangs:  make(map[string]struct{}, len(opts.ExcludeLangs)),
	}
	for _, r := range opts.ExcludeRepos {
		g.excludeRepos[r] = struct{}{}
	}
	for _, l := range opts.ExcludeLangs {
		g.excludeLangs[strings.ToLower(l)] = struct{}{}
	}
	return g
}

func (g *GitHubGateway) Name(ctx context.Context) (string, error) {
	s, err := g.summary.get(ctx, g.fetchSummary)
	return s.name, err
}

func (g *GitHubGateway) Stargazers(ctx context.Context) (int, error) {
	s, err := g.summary.get(ctx, g.fetchSummary)
	return s.stars, err
}

func (g *GitHubGateway) Forks(ctx context.Context) (int, error) {
	s, err := g.summary.get(ctx, g.fetchSummary)
	return s.forks, err
}

func (g *GitHubGateway) Repos(ctx context.Context) ([]string, error) {
	s, err := g.summary.get(ctx, g.fetchSummary)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.repos...), nil
}

func (g *GitHubGateway) Languages(ctx context.Context) ([]domain.Language, error) {
	s, err := g.summary.get(ctx, g.fetchSummary)
	if err != nil {
		return nil, err
	}
	return append([]domain.Language(nil), s.languages...), nil
}

func (g *GitHubGateway) TotalContributions(ctx context.Context) (int, error) {
	return g.contributions.get(ctx, g.fetchContributions)
}

func (g *GitHubGateway) LinesChanged(ctx context.Context) (int, int, error) {
	c, err := g.lines.get(ctx, g.fetchLinesChanged)
	return c.additions, c.deletions, err
}

func (g *GitHubGateway) Views(ctx context.Context) (int, error) {
	return g.views.get(ctx, g.fetchViews)
}

func (g *GitHubGateway) fetchSummary(ctx context.Context) (repoSummary, error) {
	g.logger.Info("Fetching repository overview using GraphQL API...")
	variables := map[string]interface{}{
		"ownedCursor":   (*githubv4.String)(nil),
		"contribCursor": (*githubv4.String)(nil),
	}

	var s repoSummary
	seen := make(map[string]struct{})
	sizes := make(map[string]*domain.Language)
	var order []string

	for {
		var q reposOverviewQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return repoSummary{}, fmt.Errorf("failed to execute GraphQL query for repositories: %w", err)
		}
		if s.name == "" {
			s.name = q.Viewer.Login
			if q.Viewer.Name != nil && *q.Viewer.Name != "" {
				s.name = *q.Viewer.Name
			}
		}

		nodes := q.Viewer.Repositories.Nodes
		if !g.opts.IgnoreForkedRepos {
			nodes = append(nodes, q.Viewer.RepositoriesContributedTo.Nodes...)
		}
		for _, repo := range nodes {
			if _, ok := seen[repo.NameWithOwner]; ok {
				continue
			}
			if _, ok := g.excludeRepos[repo.NameWithOwner]; ok {
				continue
			}
			seen[repo.NameWithOwner] = struct{}{}
			s.repos = append(s.repos, repo.NameWithOwner)
			s.stars += repo.Stargazers.TotalCount
			s.forks += repo.ForkCount

			for _, edge := range repo.Languages.Edges {
				name := edge.Node.Name
				if _, ok := g.excludeLangs[strings.ToLower(name)]; ok {
					continue
				}
				if l, ok := sizes[name]; ok {
					l.Size += edge.Size
					continue
				}
				l := &domain.Language{Name: name, Size: edge.Size}
				if edge.Node.Color != nil {
					l.Color = *edge.Node.Color
				}
				sizes[name] = l
				order = append(order, name)
			}
		}

		owned, contrib := q.Viewer.Repositories.PageInfo, q.Viewer.RepositoriesContributedTo.PageInfo
		if g.opts.IgnoreForkedRepos {
			contrib.HasNextPage = false
		}
		if !owned.HasNextPage && !contrib.HasNextPage {
			break
		}
		if owned.HasNextPage {
			variables["ownedCursor"] = githubv4.NewString(owned.EndCursor)
		}
		if contrib.HasNextPage {
			variables["contribCursor"] = githubv4.NewString(contrib.EndCursor)
		}
		g.logger.Debug("Fetching next page of repositories...")
	}

	var total int64
	for _, l := range sizes {
		total += l.Size
	}
	s.languages = make([]domain.Language, 0, len(order))
	for _, name := range order {
		l := *sizes[name]
		if total > 0 {
			l.Prop = 100 * float64(l.Size) / float64(total)
		}
		if l.Color == "" && g.opts.FillLanguageColors {
			l.Color = enry.GetColor(l.Name)
		}
		s.languages = append(s.languages, l)
	}

	g.logger.Info("Completed fetching repository overview.", "repos", len(s.repos), "languages", len(s.languages))
	return s, nil
}

func (g *GitHubGateway) fetchContributions(ctx context.Context) (int, error) {
	g.logger.Info("Fetching contribution data using GraphQL API...")
	var years contributionYearsQuery
	if err := g.graphqlClient.Query(ctx, &years, nil); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for contribution years: %w", err)
	}

	total := 0
	for _, year := range years.Viewer.ContributionsCollection.ContributionYears {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		variables := map[string]interface{}{
			"from": githubv4.DateTime{Time: from},
			"to":   githubv4.DateTime{Time: from.AddDate(1, 0, 0)},
		}
		var q contributionCalendarQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return 0, fmt.Errorf("failed to execute GraphQL query for contributions in %d: %w", year, err)
		}
		total += q.Viewer.ContributionsCollection.ContributionCalendar.TotalContributions
	}
	g.logger.Info("Completed fetching contribution data.", "total", total)
	return total, nil
}

func (g *GitHubGateway) fetchLinesChanged(ctx context.Context) (lineCounts, error) {
	repos, err := g.Repos(ctx)
	if err != nil {
		return lineCounts{}, err
	}
	g.logger.Info("Fetching contributor statistics using REST API...", "repos", len(repos))

	perRepo := make([]lineCounts, len(repos))
	err = g.forEachRepo(ctx, repos, func(ctx context.Context, i int, owner, name string) error {
		var stats []*github.ContributorStats
		err := retry.Do(
			func() error {
				var err error
				stats, _, err = g.restClient.Repositories.ListContributorsStats(ctx, owner, name)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(g.opts.RetryAttempts),
			retry.Delay(g.opts.RetryDelay),
			retry.DelayType(retry.FixedDelay),
			retry.RetryIf(isAccepted),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, _ error) {
				g.logger.Debug("Contributor statistics not ready, retrying...", "repo", owner+"/"+name, "attempt", n+1)
			}),
		)
		switch {
		case isAccepted(err):
			g.logger.Warn("Too many 202 responses; lines changed will be incomplete.", "repo", owner+"/"+name)
			return nil
		case isUnavailable(err):
			g.logger.Debug("Contributor statistics unavailable.", "repo", owner+"/"+name, "err", err)
			return nil
		case err != nil:
			return fmt.Errorf("failed to fetch contributor stats for %s/%s: %w", owner, name, err)
		}

		for _, s := range stats {
			if !strings.EqualFold(s.GetAuthor().GetLogin(), g.opts.User) {
				continue
			}
			for _, week := range s.Weeks {
				perRepo[i].additions += week.GetAdditions()
				perRepo[i].deletions += week.GetDeletions()
			}
		}
		return nil
	})
	if err != nil {
		return lineCounts{}, err
	}

	var total lineCounts
	for _, c := range perRepo {
		total.additions += c.additions
		total.deletions += c.deletions
	}
	g.logger.Info("Completed fetching contributor statistics.", "additions", total.additions, "deletions", total.deletions)
	return total, nil
}

func (g *GitHubGateway) fetchViews(ctx context.Context) (int, error) {
	repos, err := g.Repos(ctx)
	if err != nil {
		return 0, err
	}
	g.logger.Info("Fetching traffic data using REST API...", "repos", len(repos))

	perRepo := make([]int, len(repos))
	err = g.forEachRepo(ctx, repos, func(ctx context.Context, i int, owner, name string) error {
		views, _, err := g.restClient.Repositories.ListTrafficViews(ctx, owner, name, &github.TrafficBreakdownOptions{Per: "day"})
		if isUnavailable(err) {
			g.logger.Debug("Traffic data unavailable.", "repo", owner+"/"+name, "err", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to fetch traffic views for %s/%s: %w", owner, name, err)
		}
		for _, v := range views.Views {
			perRepo[i] += v.GetCount()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range perRepo {
		total += n
	}
	g.logger.Info("Completed fetching traffic data.", "views", total)
	return total, nil
}

// forEachRepo calls fn for every "owner/name" in repos with bounded concurrency.
func (g *GitHubGateway) forEachRepo(ctx context.Context, repos []string, fn func(ctx context.Context, i int, owner, name string) error) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)
	for i, repo := range repos {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok {
			g.logger.Warn("Skipping malformed repository name.", "repo", repo)
			continue
		}
		i := i // per-iteration copy; go directive lowered below 1.22 for the local toolchain
		eg.Go(func() error {
			return fn(egCtx, i, owner, name)
		})
	}
	return eg.Wait()
}

func isAccepted(err error) bool {
	var accepted *github.AcceptedError
	return errors.As(err, &accepted)
}

// isUnavailable reports whether the API refused the request for this repository
// specifically, e.g. traffic data on a repository the user cannot push to.
func isUnavailable(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return false
	}
	switch errResp.Response.StatusCode {
	case http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
