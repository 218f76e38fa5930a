package vcs

import "context"

// Tag is a tag name and the commit it references.
type Tag struct {
	Name   string
	Commit string
}

// Repository identifies a repository on the collaboration host.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// TagStore performs tag operations on a local working copy and its remote.
type TagStore interface {
	// FetchTags updates local tag refs from the remote.
	FetchTags(ctx context.Context) error

	// ListVersionTags returns local tags matching the release pattern, highest version first.
	ListVersionTags(ctx context.Context) ([]string, error)

	// CreateTag creates a lightweight tag at HEAD.
	CreateTag(ctx context.Context, name string) error

	// DeleteTag deletes a local tag.
	DeleteTag(ctx context.Context, name string) error

	// DeleteRemoteTag deletes a tag on the remote.
	DeleteRemoteTag(ctx context.Context, name string) error

	// PushTag pushes a single tag to the remote.
	PushTag(ctx context.Context, name string) error

	// PushAllTags pushes every local tag to the remote.
	PushAllTags(ctx context.Context) error

	// HeadCommit returns the SHA HEAD points at.
	HeadCommit(ctx context.Context) (string, error)

	// TagCommit returns the commit SHA a local tag references.
	TagCommit(ctx context.Context, name string) (string, error)
}

// RepoClient talks to the collaboration host API.
type RepoClient interface {
	// Authenticate checks the credential against the repository and returns its metadata.
	Authenticate(ctx context.Context, owner, repo string) (Repository, error)

	// ListTags returns all tags of the repository as the host sees them.
	ListTags(ctx context.Context, owner, repo string) ([]Tag, error)
}
