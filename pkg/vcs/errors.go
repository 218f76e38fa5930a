package vcs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGitOperationFailed is wrapped by every failed git invocation.
var ErrGitOperationFailed = errors.New("git operation failed")

// GitError describes a failed git command.
type GitError struct {
	Args   []string
	Err    error
	Stderr string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))
	if out := strings.TrimSpace(e.Stderr); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError wraps err so that errors.Is(err, ErrGitOperationFailed) holds.
func NewGitError(args []string, err error, stderr string) *GitError {
	return &GitError{
		Args:   args,
		Err:    fmt.Errorf("%w: %v", ErrGitOperationFailed, err),
		Stderr: stderr,
	}
}
