package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken is returned by Validate when no credential was supplied.
var ErrMissingToken = errors.New("Missing GITHUB_TOKEN environment variable.")

type Config struct {
	Remote   string `yaml:"remote"`
	Dir      string `yaml:"dir"`
	Alias    Alias  `yaml:"alias"`
	Output   string `yaml:"output"`
	APIURL   string `yaml:"api_url"`
	LogLevel string `yaml:"log_level"`
	Verify   bool   `yaml:"verify"`

	DryRun       bool   `yaml:"-"`
	Repo         string `yaml:"-"`
	Token        string `yaml:"-"`
	GitHubOutput string `yaml:"-"`
}

// Alias configures the floating tag re-pointed at every release.
type Alias struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

func Default() *Config {
	return &Config{
		Remote:   "origin",
		Dir:      ".",
		Output:   "github",
		LogLevel: "progress",
		Alias: Alias{
			Enabled: true,
			Name:    "latest",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFlags overrides cfg with flags the user set explicitly, and with the
// credential and repository flags whenever they carry a value.
func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if v, err := flags.GetString("remote"); err == nil && flags.Changed("remote") {
		cfg.Remote = v
	}
	if v, err := flags.GetString("dir"); err == nil && flags.Changed("dir") {
		cfg.Dir = v
	}
	if v, err := flags.GetBool("latest"); err == nil && flags.Changed("latest") {
		cfg.Alias.Enabled = v
	}
	if v, err := flags.GetString("alias"); err == nil && flags.Changed("alias") {
		cfg.Alias.Name = v
	}
	if v, err := flags.GetString("output"); err == nil && flags.Changed("output") {
		cfg.Output = v
	}
	if v, err := flags.GetString("api-url"); err == nil && flags.Changed("api-url") {
		cfg.APIURL = v
	}
	if v, err := flags.GetString("log-level"); err == nil && flags.Changed("log-level") {
		cfg.LogLevel = v
	}
	if v, err := flags.GetBool("verify"); err == nil && flags.Changed("verify") {
		cfg.Verify = v
	}
	if v, err := flags.GetBool("dry-run"); err == nil {
		cfg.DryRun = v
	}
	if v, err := flags.GetString("repo"); err == nil && v != "" {
		cfg.Repo = v
	}
	if v, err := flags.GetString("github-token"); err == nil && v != "" {
		cfg.Token = v
	}
	if v, err := flags.GetString("github-output"); err == nil && v != "" {
		cfg.GitHubOutput = v
	}
	return cfg
}

// Validate checks the preconditions that must hold before anything is
// mutated. Repo may still be empty; the caller derives it from the remote.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if c.Repo != "" {
		owner, name, ok := strings.Cut(c.Repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("invalid repository %q: want owner/name", c.Repo)
		}
	}
	if c.Alias.Enabled && strings.TrimSpace(c.Alias.Name) == "" {
		return errors.New("alias tag name must not be empty")
	}
	switch c.Output {
	case "github", "json", "text":
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	return nil
}
