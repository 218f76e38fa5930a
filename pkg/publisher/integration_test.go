package publisher

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/version-publisher/pkg/reporter"
	"github.com/version-publisher/pkg/vcs"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// bareRemoteClient answers ListTags from a bare repository on disk.
type bareRemoteClient struct {
	t   *testing.T
	dir string
}

func (c *bareRemoteClient) Authenticate(_ context.Context, owner, repo string) (vcs.Repository, error) {
	return vcs.Repository{Owner: owner, Name: repo}, nil
}

func (c *bareRemoteClient) ListTags(context.Context, string, string) ([]vcs.Tag, error) {
	out := runGit(c.t, c.dir, "for-each-ref", "--format=%(refname:short) %(objectname)", "refs/tags")
	var tags []vcs.Tag
	for _, line := range strings.Split(out, "\n") {
		if name, commit, ok := strings.Cut(line, " "); ok {
			tags = append(tags, vcs.Tag{Name: name, Commit: commit})
		}
	}
	return tags, nil
}

func setupWorkspace(t *testing.T) (work, remote string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	remote = t.TempDir()
	runGit(t, remote, "init", "--bare")

	work = t.TempDir()
	runGit(t, work, "init")
	runGit(t, work, "config", "user.name", "Test User")
	runGit(t, work, "config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(work, "README.md"), []byte("v1"), 0o644))
	runGit(t, work, "add", "README.md")
	runGit(t, work, "commit", "-m", "first release")
	runGit(t, work, "remote", "add", "origin", remote)
	return work, remote
}

func commitFile(t *testing.T, work, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(work, "README.md"), []byte(content), 0o644))
	runGit(t, work, "commit", "-am", content)
}

func TestPublish_GitEndToEnd(t *testing.T) {
	ctx := context.Background()
	work, remote := setupWorkspace(t)

	runGit(t, work, "tag", "v1.2.9")
	commitFile(t, work, "second")
	runGit(t, work, "tag", "v1.2.10")
	runGit(t, work, "tag", "latest")
	runGit(t, work, "push", "origin", "--tags")
	commitFile(t, work, "third")

	outputFile := filepath.Join(t.TempDir(), "github_output")
	p := New(
		vcs.NewGit(work, "origin"),
		&bareRemoteClient{t: t, dir: remote},
		reporter.New("github", outputFile, &bytes.Buffer{}),
		Options{Owner: "acme", Repo: "widgets", Alias: "latest", Verify: true},
	)

	rel, err := p.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.11", rel.Tag)

	head := runGit(t, work, "rev-parse", "HEAD")
	assert.Equal(t, head, runGit(t, remote, "rev-parse", "refs/tags/v1.2.11"))
	assert.Equal(t, head, runGit(t, remote, "rev-parse", "refs/tags/latest"))
	assert.Equal(t, head, runGit(t, work, "rev-parse", "refs/tags/latest"))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "tag=v1.2.11\n", string(data))
}

func TestPublish_GitFirstReleaseWithoutAlias(t *testing.T) {
	work, remote := setupWorkspace(t)

	var out bytes.Buffer
	p := New(
		vcs.NewGit(work, "origin"),
		&bareRemoteClient{t: t, dir: remote},
		reporter.New("text", "", &out),
		Options{Owner: "acme", Repo: "widgets"},
	)

	rel, err := p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.0.1", rel.Tag)
	assert.Equal(t, "tag=v0.0.1\n", out.String())
	assert.Equal(t, "v0.0.1", runGit(t, remote, "tag", "--list"))
}
