package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/version-publisher/pkg/version"
)

// DefaultRemote is the remote tags are fetched from and pushed to.
const DefaultRemote = "origin"

// Git is a TagStore backed by the git CLI. Ref lookups go through go-git so
// they do not depend on porcelain output.
type Git struct {
	dir      string
	remote   string
	executor CommandExecutor
}

// NewGit returns a Git working in dir against remote, running the git binary.
func NewGit(dir, remote string) *Git {
	return NewGitWithExecutor(dir, remote, NewExecExecutor())
}

func NewGitWithExecutor(dir, remote string, executor CommandExecutor) *Git {
	if remote == "" {
		remote = DefaultRemote
	}
	return &Git{dir: dir, remote: remote, executor: executor}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	return g.executor.Run(ctx, g.dir, args...)
}

func (g *Git) FetchTags(ctx context.Context) error {
	// --force lets a moved alias tag on the remote overwrite the local one.
	_, err := g.run(ctx, "fetch", g.remote, "--tags", "--force")
	return err
}

func (g *Git) ListVersionTags(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "tag", "--list", version.Pattern, "--sort=-v:refname")
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

func (g *Git) CreateTag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "tag", name)
	return err
}

func (g *Git) DeleteTag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "tag", "-d", name)
	return err
}

func (g *Git) DeleteRemoteTag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "push", g.remote, "--delete", "refs/tags/"+name)
	return err
}

func (g *Git) PushTag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "push", g.remote, "refs/tags/"+name)
	return err
}

func (g *Git) PushAllTags(ctx context.Context) error {
	_, err := g.run(ctx, "push", g.remote, "--tags")
	return err
}

func (g *Git) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(g.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", g.dir, err)
	}
	return repo, nil
}

func (g *Git) HeadCommit(_ context.Context) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (g *Git) TagCommit(_ context.Context, name string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Tag(name)
	if err != nil {
		return "", fmt.Errorf("resolve tag %s: %w", name, err)
	}

	// Annotated tags point at a tag object, lightweight tags at the commit.
	obj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := obj.Commit()
		if err != nil {
			return "", fmt.Errorf("peel tag %s: %w", name, err)
		}
		return commit.Hash.String(), nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash().String(), nil
	default:
		return "", fmt.Errorf("read tag %s: %w", name, err)
	}
}

// RemoteURL returns the first configured URL of the remote.
func (g *Git) RemoteURL() (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(g.remote)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", g.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", g.remote)
	}
	return urls[0], nil
}
