package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/version-publisher/pkg/config"
	"github.com/version-publisher/pkg/log"
	"github.com/version-publisher/pkg/publisher"
	"github.com/version-publisher/pkg/reporter"
	"github.com/version-publisher/pkg/vcs"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error incrementing version: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "version-publisher",
		Short:         "Tag the next patch release and move the latest alias",
		Long:          `Finds the highest v<major>.<minor>.<patch> tag, creates and pushes its patch successor, re-points the "latest" tag and publishes the new tag as the "tag" output.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, stdout)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", ".version-publisher.yml", "Path to config file")
	flags.String("github-token", os.Getenv("GITHUB_TOKEN"), "GitHub token for API access")
	flags.String("repo", os.Getenv("GITHUB_REPOSITORY"), "GitHub repo (owner/repo); derived from the remote URL if empty")
	flags.String("api-url", os.Getenv("GITHUB_API_URL"), "GitHub API base URL")
	flags.String("remote", "origin", "Git remote to fetch from and push to")
	flags.String("dir", ".", "Path to the git working copy")
	flags.String("log-level", "progress", "Log level: debug | info | progress | warn | error")

	rootCmd.Flags().Bool("latest", true, "Re-point the alias tag at the new release")
	rootCmd.Flags().String("alias", "latest", "Name of the alias tag")
	rootCmd.Flags().String("output", "github", "Output format: github | json | text")
	rootCmd.Flags().String("github-output", os.Getenv("GITHUB_OUTPUT"), "Workflow output file")
	rootCmd.Flags().Bool("dry-run", false, "Compute the next tag and log the steps without running them")
	rootCmd.Flags().Bool("verify", false, "Check through the GitHub API that the pushed tags agree")

	rootCmd.AddCommand(newNextCmd(stdout))
	return rootCmd
}

func newNextCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next release tag without creating it",
		Long:  `Fetches tags from the remote, then prints the tag a publish run would create. Nothing is created or pushed, but the forced fetch updates local tags (such as a moved "latest") to match the remote.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			initLogging(cfg, cmd.ErrOrStderr())

			p := publisher.New(vcs.NewGit(cfg.Dir, cfg.Remote), nil, nil, publisher.Options{})
			plan, err := p.Plan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, plan.Next)
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not load config file: %v (using defaults)\n", err)
		}
		cfg = config.Default()
	}
	return config.MergeFlags(cfg, cmd.Flags())
}

func initLogging(cfg *config.Config, w io.Writer) {
	log.Init(log.Config{Level: log.Level(cfg.LogLevel), Output: w})
}

func runPublish(cmd *cobra.Command, stdout io.Writer) error {
	cfg := loadConfig(cmd)
	initLogging(cfg, cmd.ErrOrStderr())

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	git := vcs.NewGit(cfg.Dir, cfg.Remote)

	repoRef := cfg.Repo
	if repoRef == "" {
		url, err := git.RemoteURL()
		if err != nil {
			return fmt.Errorf("no --repo given and remote not usable: %w", err)
		}
		repoRef = url
	}
	owner, repo, err := vcs.ParseGitHubRepo(repoRef)
	if err != nil {
		return err
	}

	client, err := vcs.NewTokenClient(ctx, cfg.Token, cfg.APIURL)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		log.Progressf("Dry run: no tags will be created or pushed.")
	}

	alias := ""
	if cfg.Alias.Enabled {
		alias = cfg.Alias.Name
	}

	p := publisher.New(git, vcs.NewGitHubClient(client), reporter.New(cfg.Output, cfg.GitHubOutput, stdout), publisher.Options{
		Owner:  owner,
		Repo:   repo,
		Alias:  alias,
		Verify: cfg.Verify,
		DryRun: cfg.DryRun,
	})
	_, err = p.Publish(ctx)
	return err
}
