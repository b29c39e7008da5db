package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/naka-gawa/github-stats-badges/internal/config"
	"github.com/naka-gawa/github-stats-badges/internal/gateway"
	"github.com/naka-gawa/github-stats-badges/internal/usecase"
	"github.com/naka-gawa/github-stats-badges/templates"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates overview and languages badges as SVG files",
	Long: `Fetches statistics for the user named by GITHUB_ACTOR using the token in ACCESS_TOKEN,
then renders overview.svg, overview-dark.svg, languages.svg and languages-dark.svg.

Repositories listed in EXCLUDED and languages listed in EXCLUDED_LANGS (comma separated)
are skipped. Set EXCLUDE_FORKED_REPOS to ignore repositories the user only contributed to.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(verbose)

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(ctx, configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Flags win over the environment and the config file.
		if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
			cfg.TemplateDir = dir
		}
		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			cfg.OutputDir = dir
		}

		var templateFS fs.FS = templates.FS
		if cfg.TemplateDir != "" {
			templateFS = os.DirFS(cfg.TemplateDir)
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
			User:               cfg.User,
			Token:              cfg.Token,
			ExcludeRepos:       cfg.ExcludedRepos,
			ExcludeLangs:       cfg.ExcludedLangs,
			IgnoreForkedRepos:  bool(cfg.ExcludeForkedRepos),
			FillLanguageColors: bool(cfg.FillLanguageColors),
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, logger)
		generator := usecase.NewGenerator(aggregator, templateFS, cfg.OutputDir, logger)

		written, err := generator.Generate(ctx)
		for _, path := range written {
			fmt.Println(path)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate badges: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("config", "c", "", "Path to a YAML config file")
	generateCmd.Flags().StringP("templates", "t", "", "Directory containing the SVG templates (default: built-in templates)")
	generateCmd.Flags().StringP("output", "o", "", "Directory the badges are written to (default: "+config.DefaultOutputDir+")")
}
