package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/standup-bot/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	participantStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true).
			Padding(0, 2)

	answerStyle = lipgloss.NewStyle().
			Padding(0, 4).
			MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the answers of one standup",
	Long:  `Display every participant's answers for the standup on date (YYYY-MM-DD, default today).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		day, err := resolveDate(args, cfg)
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		report, err := store.LoadReport(context.Background(), day)
		if errors.Is(err, internal.ErrSessionNotFound) {
			return fmt.Errorf("no standup on %s (use 'standup-bot sessions' to list them)", day)
		}
		if err != nil {
			return err
		}
		renderReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// resolveDate returns the date argument, or today in the configured timezone.
func resolveDate(args []string, cfg *internal.Config) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return time.Now().In(cfg.Location()).Format(internal.DateLayout), nil
	}
	if _, err := time.Parse(internal.DateLayout, args[0]); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", args[0])
	}
	return args[0], nil
}

func renderReport(w io.Writer, report *internal.SessionReport) {
	counts := report.Counts()
	fmt.Fprintln(w, sessionHeaderStyle.Render("🗓  Standup "+report.Session.Date))
	fmt.Fprintln(w, sessionMetaStyle.Render(fmt.Sprintf("%d answered · %d skipped · %d did not respond",
		counts[internal.StatusAnswered], counts[internal.StatusSkipped], counts[internal.StatusPending])))

	for _, rec := range report.Records {
		fmt.Fprintf(w, "%s %s\n", participantStyle.Render("@"+rec.DisplayName),
			timestampStyle.Render(fmt.Sprintf("%s, %s", rec.Status, rec.UpdatedAt.Local().Format("15:04"))))
		pairs := rec.Pairs()
		if len(pairs) == 0 {
			fmt.Fprintln(w, answerStyle.Render(timestampStyle.Render("no answers")))
			continue
		}
		for _, qa := range pairs {
			fmt.Fprintln(w, questionStyle.Render(qa.Question))
			fmt.Fprintln(w, answerStyle.Render(qa.Answer))
		}
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
