package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/ksuid"
)

// OutputName is the key the new tag is published under.
const OutputName = "tag"

// GitHubReporter publishes the tag as a workflow step output. It appends to
// the $GITHUB_OUTPUT file when Path is set and falls back to the legacy
// ::set-output command otherwise.
type GitHubReporter struct {
	Path string
	w    io.Writer
}

func (r *GitHubReporter) Report(out Outputs) error {
	if r.Path == "" {
		_, err := fmt.Fprintf(r.w, "::set-output name=%s::%s\n", OutputName, escapeCommand(out.Tag))
		return err
	}

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatOutput(OutputName, out.Tag)); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}

// formatOutput renders name=value, switching to the heredoc form when value
// spans lines.
func formatOutput(name, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return fmt.Sprintf("%s=%s\n", name, value)
	}
	delimiter := "ghadelimiter_" + ksuid.New().String()
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
}

func escapeCommand(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
