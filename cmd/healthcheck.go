package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/standup"
	"github.com/iksnae/standup-bot/internal/transport"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that standup-bot is configured and can reach its database",
	Long: `Check the health of standup-bot by verifying:
  • Config file loading and validation
  • Schedule parsing and next run time
  • Database access
  • Channel and participant resolution

This command is useful for debugging a deployment before starting the bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load config:"), err)
			return err
		}
		tr := transport.NewConsole(cfg.BotUsername, cmd.InOrStdin(), out)
		return runHealthcheck(cmd, cfg, tr)
	},
}

func runHealthcheck(cmd *cobra.Command, cfg *internal.Config, tr transport.Transport) error {
	out := cmd.OutOrStdout()
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.OperationTimeout+time.Duration(len(cfg.Participants))*cfg.OperationTimeout)
	defer cancel()

	fmt.Fprintln(out, sectionStyle.Render("🔍 Standup Bot Health Check"))
	fmt.Fprintln(out)

	// Step 1: Config
	fmt.Fprintln(out, infoStyle.Render("Step 1: Loading config..."))
	fmt.Fprintln(out, successStyle.Render("✅ Config is valid"))
	if healthcheckVerbose {
		fmt.Fprintf(out, "   Channel: #%s\n", cfg.Channel)
		fmt.Fprintf(out, "   Questions: %d\n", len(cfg.Questions))
		fmt.Fprintf(out, "   Rollup delay: %s\n", cfg.RollupDelay())
	}
	fmt.Fprintln(out)

	// Step 2: Schedule
	fmt.Fprintln(out, infoStyle.Render("Step 2: Checking schedule..."))
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Invalid schedule:"), err)
		return err
	}
	next := schedule.Next(time.Now().In(cfg.Location()))
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Next standup at %s", next.Format(time.RFC1123))))
	fmt.Fprintln(out)

	// Step 3: Database
	fmt.Fprintln(out, infoStyle.Render("Step 3: Opening database..."))
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to open database:"), err)
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Ping(ctx); err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Database ping failed:"), err)
		return err
	}
	summaries, err := store.ListSessions(ctx, 1)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to read sessions:"), err)
		return err
	}
	fmt.Fprintln(out, successStyle.Render("✅ Database is readable"))
	if healthcheckVerbose && len(summaries) > 0 {
		fmt.Fprintf(out, "   Last standup: %s\n", summaries[0].Session.Date)
	}
	fmt.Fprintln(out)

	// Step 4: Chat
	fmt.Fprintln(out, infoStyle.Render("Step 4: Resolving channel and participants..."))
	if _, err := tr.ResolveChannel(ctx, cfg.Channel); err != nil {
		fmt.Fprintln(out, errorStyle.Render("❌ Failed to resolve channel:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	directory, err := standup.NewDirectory(ctx, tr, cfg.Participants, tr.Self())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Channel resolved, %d of %d participant(s) resolved", directory.Len(), len(cfg.Participants))))
	if healthcheckVerbose {
		for _, p := range directory.Participants() {
			fmt.Fprintf(out, "   @%s\n", p.DisplayName)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	fmt.Fprintln(out)
	if directory.Len() < len(cfg.Participants) {
		fmt.Fprintln(out, warningStyle.Render("⚠️  Some participants could not be resolved and will be skipped"))
		return nil
	}
	fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
}
