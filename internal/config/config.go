// Package config loads the settings the badge generator runs with.
// Values come from an optional YAML file and are overridden by environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultOutputDir is where badges are written unless configured otherwise.
const DefaultOutputDir = "generated"

var (
	ErrMissingToken = errors.New("a personal access token is required: set ACCESS_TOKEN")
	ErrMissingUser  = errors.New("a user is required: set GITHUB_ACTOR")
)

// Flag is a boolean that treats any value other than "false" as true.
type Flag bool

// EnvDecode implements envconfig.Decoder.
func (f *Flag) EnvDecode(val string) error {
	*f = Flag(val != "" && !strings.EqualFold(strings.TrimSpace(val), "false"))
	return nil
}

type Config struct {
	// Token is never read from the config file.
	Token       string `yaml:"-" env:"ACCESS_TOKEN, overwrite"`
	GitHubToken string `yaml:"-" env:"GITHUB_TOKEN, overwrite"`

	User               string   `yaml:"user" env:"GITHUB_ACTOR, overwrite"`
	ExcludedRepos      []string `yaml:"excluded_repos" env:"EXCLUDED, overwrite"`
	ExcludedLangs      []string `yaml:"excluded_langs" env:"EXCLUDED_LANGS, overwrite"`
	ExcludeForkedRepos Flag     `yaml:"exclude_forked_repos" env:"EXCLUDE_FORKED_REPOS, overwrite"`
	FillLanguageColors Flag     `yaml:"fill_language_colors" env:"FILL_LANGUAGE_COLORS, overwrite"`

	// TemplateDir is empty when the embedded templates should be used.
	TemplateDir string `yaml:"template_dir" env:"STATS_TEMPLATE_DIR, overwrite"`
	OutputDir   string `yaml:"output_dir" env:"STATS_OUTPUT_DIR, overwrite"`
}

// Load reads the config file at path, if any, then applies the process environment.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit source of environment variables.
func LoadWith(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Token == "" {
		cfg.Token = cfg.GitHubToken
	}
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.ExcludedRepos = cleanList(cfg.ExcludedRepos)
	cfg.ExcludedLangs = cleanList(cfg.ExcludedLangs)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.User == "" {
		return nil, ErrMissingUser
	}
	return &cfg, nil
}

// cleanList trims every entry and drops empty ones.
func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
