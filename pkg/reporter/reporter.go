package reporter

import (
	"io"
	"os"
)

// Outputs are the values a publish run hands to its caller.
type Outputs struct {
	Tag      string `json:"tag"`
	Previous string `json:"previous"`
}

type Reporter interface {
	Report(out Outputs) error
}

// New returns the reporter for format. githubOutput is the path of the
// workflow output file and only matters for the "github" format.
func New(format, githubOutput string, w io.Writer) Reporter {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "text":
		return &TextReporter{w: w}
	default:
		return &GitHubReporter{Path: githubOutput, w: w}
	}
}
