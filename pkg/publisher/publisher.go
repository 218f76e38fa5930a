package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/version-publisher/pkg/log"
	"github.com/version-publisher/pkg/reporter"
	"github.com/version-publisher/pkg/steps"
	"github.com/version-publisher/pkg/vcs"
	"github.com/version-publisher/pkg/version"
)

// ErrVerificationFailed is returned when the published tags disagree.
var ErrVerificationFailed = errors.New("release verification failed")

type Options struct {
	Owner string
	Repo  string
	// Alias is the floating tag moved to every release. Empty disables it.
	Alias  string
	Verify bool
	DryRun bool
}

// Plan is the outcome of inspecting the tag history.
type Plan struct {
	Latest version.Version
	// Found is false when no release tag existed and Latest is version.Zero.
	Found bool
	Next  version.Version
}

// Release describes a finished publish run.
type Release struct {
	Repository vcs.Repository
	Previous   string
	Tag        string
	// Commit is HEAD at the time the tags were created.
	Commit string
	Steps  steps.Result
}

type Publisher struct {
	tags     vcs.TagStore
	client   vcs.RepoClient
	reporter reporter.Reporter
	opts     Options
}

func New(tags vcs.TagStore, client vcs.RepoClient, rep reporter.Reporter, opts Options) *Publisher {
	return &Publisher{
		tags:     tags,
		client:   client,
		reporter: rep,
		opts:     opts,
	}
}

// Plan fetches tags and computes the next release. It creates and pushes
// nothing, but the forced fetch updates local tags to match the remote.
func (p *Publisher) Plan(ctx context.Context) (Plan, error) {
	if err := p.tags.FetchTags(ctx); err != nil {
		return Plan{}, fmt.Errorf("fetch tags: %w", err)
	}

	tags, err := p.tags.ListVersionTags(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("list tags: %w", err)
	}

	latest, found, err := version.Latest(tags)
	if err != nil {
		return Plan{}, err
	}
	next, err := latest.Next()
	if err != nil {
		return Plan{}, err
	}
	return Plan{Latest: latest, Found: found, Next: next}, nil
}

// Publish authenticates, computes the next release, creates and pushes its
// tag, moves the alias, and reports the new tag.
func (p *Publisher) Publish(ctx context.Context) (Release, error) {
	repo, err := p.client.Authenticate(ctx, p.opts.Owner, p.opts.Repo)
	if err != nil {
		return Release{}, fmt.Errorf("authenticate: %w", err)
	}
	log.Debug("authenticated", "repository", repo.FullName())

	plan, err := p.Plan(ctx)
	if err != nil {
		return Release{}, err
	}
	log.Progressf("Latest tag: %s", plan.Latest)
	log.Progressf("New tag: %s", plan.Next)

	rel := Release{
		Repository: repo,
		Previous:   plan.Latest.String(),
		Tag:        plan.Next.String(),
	}
	if rel.Commit, err = p.tags.HeadCommit(ctx); err != nil {
		return rel, err
	}

	runner := &steps.Runner{DryRun: p.opts.DryRun}
	rel.Steps, err = runner.Run(ctx, p.sequence(rel))
	if err != nil {
		return rel, err
	}
	if p.opts.DryRun {
		return rel, nil
	}
	log.Progressf("Tag %s created and pushed.", rel.Tag)

	if p.opts.Verify {
		if err := p.verify(ctx, rel); err != nil {
			return rel, err
		}
		log.Debug("verified release on remote", "tag", rel.Tag, "alias", p.opts.Alias)
	}
	return rel, nil
}

func (p *Publisher) sequence(rel Release) []steps.Step {
	tag := rel.Tag
	plan := []steps.Step{
		{Name: "create tag " + tag, Run: func(ctx context.Context) error { return p.tags.CreateTag(ctx, tag) }},
		{Name: "push tag " + tag, Run: func(ctx context.Context) error { return p.tags.PushTag(ctx, tag) }},
	}

	if alias := p.opts.Alias; alias != "" {
		plan = append(plan,
			// A missing local alias is the normal first-run state.
			steps.Step{Name: "delete local tag " + alias, Policy: steps.BestEffort, Run: func(ctx context.Context) error { return p.tags.DeleteTag(ctx, alias) }},
			steps.Step{Name: "create tag " + alias, Run: func(ctx context.Context) error { return p.tags.CreateTag(ctx, alias) }},
			steps.Step{Name: "delete remote tag " + alias, Policy: steps.BestEffort, Run: func(ctx context.Context) error { return p.tags.DeleteRemoteTag(ctx, alias) }},
			steps.Step{Name: "push tag " + alias, Run: func(ctx context.Context) error { return p.tags.PushTag(ctx, alias) }},
		)
	}

	return append(plan,
		steps.Step{Name: "report output", Run: func(context.Context) error {
			return p.reporter.Report(reporter.Outputs{Tag: rel.Tag, Previous: rel.Previous})
		}},
		steps.Step{Name: "push all tags", Run: p.tags.PushAllTags},
	)
}

// verify checks that the remote carries the new tag, and the alias when
// enabled, at the commit the local tag references.
func (p *Publisher) verify(ctx context.Context, rel Release) error {
	want, err := p.tags.TagCommit(ctx, rel.Tag)
	if err != nil {
		return err
	}
	if want != rel.Commit {
		return fmt.Errorf("%w: tag %s references %s, HEAD was %s", ErrVerificationFailed, rel.Tag, want, rel.Commit)
	}

	names := []string{rel.Tag}
	if p.opts.Alias != "" {
		names = append(names, p.opts.Alias)
	}

	remote, err := p.client.ListTags(ctx, rel.Repository.Owner, rel.Repository.Name)
	if err != nil {
		return err
	}
	commits := make(map[string]string, len(remote))
	for _, t := range remote {
		commits[t.Name] = t.Commit
	}

	for _, name := range names {
		got, ok := commits[name]
		if !ok {
			return fmt.Errorf("%w: tag %s missing on %s", ErrVerificationFailed, name, rel.Repository.FullName())
		}
		if got != want {
			return fmt.Errorf("%w: tag %s references %s, want %s", ErrVerificationFailed, name, got, want)
		}
	}
	return nil
}
