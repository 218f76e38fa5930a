package reporter

import (
	"fmt"
	"io"
)

type TextReporter struct {
	w io.Writer
}

func (r *TextReporter) Report(out Outputs) error {
	_, err := fmt.Fprintf(r.w, "tag=%s\n", out.Tag)
	return err
}
