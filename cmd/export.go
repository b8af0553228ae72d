package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputDir  string
	exportDate string
	exportAll  int
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export standups to files",
	Long: `Export standup reports to various formats (jsonl, md, yaml, json).

Exports one day with --date, otherwise the most recent standups (see --limit).
Use 'standup-bot sessions' to see available dates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx := context.Background()
		var reports []*internal.SessionReport

		steps := []internal.ProgressStep{
			{
				Message: "Loading standups",
				Fn: func() error {
					dates, err := exportDates(ctx, store)
					if err != nil {
						return err
					}
					for _, d := range dates {
						report, err := store.LoadReport(ctx, d)
						if err != nil {
							return fmt.Errorf("load %s: %w", d, err)
						}
						reports = append(reports, report)
					}
					return nil
				},
			},
			{
				Message: fmt.Sprintf("Writing files to %s", outputDir),
				Fn: func() error {
					if err := os.MkdirAll(outputDir, 0755); err != nil {
						return fmt.Errorf("failed to create output directory: %w", err)
					}
					for _, report := range reports {
						if err := writeReport(exporter, report); err != nil {
							internal.LogError("Failed to export standup %s: %v", report.Session.Date, err)
						}
					}
					return nil
				},
			},
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d standup(s) exported to %s", len(reports), outputDir))
		return nil
	},
}

func exportDates(ctx context.Context, store *internal.Store) ([]string, error) {
	if exportDate != "" {
		sess, err := store.GetSessionByDate(ctx, exportDate)
		if errors.Is(err, internal.ErrSessionNotFound) {
			return nil, fmt.Errorf("no standup on %s (use 'standup-bot sessions' to list them)", exportDate)
		}
		if err != nil {
			return nil, err
		}
		return []string{sess.Date}, nil
	}

	summaries, err := store.ListSessions(ctx, exportAll)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(summaries))
	for _, s := range summaries {
		dates = append(dates, s.Session.Date)
	}
	return dates, nil
}

func writeReport(exporter export.Exporter, report *internal.SessionReport) error {
	path := filepath.Join(outputDir, fmt.Sprintf("standup_%s.%s", report.Session.Date, exporter.Extension()))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(report, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Export a single standup by date (YYYY-MM-DD)")
	exportCmd.Flags().IntVarP(&exportAll, "limit", "n", 0, "Export only the most recent N standups (0 for all)")
}
