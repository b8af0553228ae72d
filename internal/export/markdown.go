package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/standup-bot/internal"
)

// MarkdownExporter exports session reports in Markdown format
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.SessionReport, w io.Writer) error {
	counts := report.Counts()

	_, _ = fmt.Fprintf(w, "# Standup %s\n\n", report.Session.Date)
	_, _ = fmt.Fprintf(w, "**Answered:** %d  \n", counts[internal.StatusAnswered])
	_, _ = fmt.Fprintf(w, "**Skipped:** %d  \n", counts[internal.StatusSkipped])
	_, _ = fmt.Fprintf(w, "**Did not respond:** %d\n\n", counts[internal.StatusPending])
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, rec := range report.Records {
		_, _ = fmt.Fprintf(w, "## @%s (%s)\n\n", rec.DisplayName, rec.Status)

		pairs := rec.Pairs()
		if len(pairs) == 0 {
			_, _ = fmt.Fprintf(w, "_No answers._\n\n")
		}
		for _, qa := range pairs {
			_, _ = fmt.Fprintf(w, "**%s**\n\n%s\n\n", escapeMarkdown(qa.Question), escapeMarkdown(qa.Answer))
		}

		if i < len(report.Records)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
