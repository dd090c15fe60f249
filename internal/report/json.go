package report

import (
	"encoding/json"
	"fmt"
	"io"

	"credence/internal/pipeline"
)

// WriteJSON emits the raw result list, indented for direct reading.
func WriteJSON(w io.Writer, results []*pipeline.EvaluationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
