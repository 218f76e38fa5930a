package reporter

import (
	"encoding/json"
	"io"
)

type JSONReporter struct {
	w io.Writer
}

func (r *JSONReporter) Report(out Outputs) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
