package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/standup-bot/internal"
	"github.com/spf13/cobra"
)

var sessionsLimit int

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"list"},
	Short:   "List past standups",
	Long:    `List standup sessions, most recent first, with answered, skipped and pending counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		summaries, err := store.ListSessions(context.Background(), sessionsLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		displaySessions(cmd, summaries)
		return nil
	},
}

func displaySessions(cmd *cobra.Command, summaries []internal.SessionSummary) {
	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No standups yet"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d standup(s)", len(summaries))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Date")+"\t"+titleStyle.Render("Answered")+"\t"+titleStyle.Render("Skipped")+"\t"+titleStyle.Render("Pending")+"\t"+titleStyle.Render("Rollup")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, s := range summaries {
		rollup := dateStyle.Render("—")
		if s.Session.RollupPostedAt != nil {
			rollup = dateStyle.Render(s.Session.RollupPostedAt.Local().Format("15:04"))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Session.Date,
			countStyle.Render(strconv.Itoa(s.Answered)),
			skippedStyle.Render(strconv.Itoa(s.Skipped)),
			pendingStyle.Render(strconv.Itoa(s.Pending)),
			rollup,
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use `standup-bot show "+summaries[0].Session.Date+"` to read the answers"))
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 30, "Maximum number of standups to list (0 for all)")
}
