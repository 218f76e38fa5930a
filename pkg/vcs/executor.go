package vcs

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor runs git with the given arguments inside dir.
type CommandExecutor interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecExecutor runs the git binary found on PATH.
type ExecExecutor struct {
	Binary string
}

func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{Binary: "git"}
}

// Run returns stdout. A non-zero exit becomes a *GitError carrying stderr.
func (e *ExecExecutor) Run(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", NewGitError(args, err, stderr.String())
	}
	return stdout.String(), nil
}
