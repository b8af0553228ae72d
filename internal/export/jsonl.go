package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/standup-bot/internal"
)

// JSONLExporter exports session reports in JSONL format (one record per line)
type JSONLExporter struct{}

// Export exports a report to JSONL format
func (e *JSONLExporter) Export(report *internal.SessionReport, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, rec := range report.Records {
		obj := map[string]interface{}{
			"date":        report.Session.Date,
			"participant": rec.DisplayName,
			"status":      rec.Status,
			"answers":     rec.Pairs(),
		}
		if !rec.UpdatedAt.IsZero() {
			obj["updated_at"] = rec.UpdatedAt
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
