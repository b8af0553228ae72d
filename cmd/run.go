package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/internal/standup"
	"github.com/iksnae/standup-bot/internal/transport"
	"github.com/spf13/cobra"
)

var runNow bool

// runCmd starts the bot
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the standup bot",
	Long: `Start the bot: resolve the channel and participants, recover any rollups
left over from a previous run, schedule the daily standup and handle replies
until interrupted.

With the console transport, replies are read from stdin as "username: text".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runBot(ctx, cfg, transport.NewConsole(cfg.BotUsername, cmd.InOrStdin(), cmd.OutOrStdout()))
	},
}

func runBot(ctx context.Context, cfg *internal.Config, tr transport.Transport) error {
	log := internal.NewLogger("run")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resolveCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	channelID, err := tr.ResolveChannel(resolveCtx, cfg.Channel)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to resolve channel %q: %w", cfg.Channel, err)
	}

	directory, err := standup.NewDirectory(ctx, tr, cfg.Participants, tr.Self())
	if err != nil {
		return err
	}

	clock := internal.SystemClock{}
	publisher := standup.NewPublisher(store, tr, channelID, clock)
	engine := standup.NewEngine(store, tr, publisher, channelID, cfg.OperationTimeout)
	rollups := standup.NewRollupScheduler(store, publisher, cfg.RollupDelay(), cfg.OperationTimeout, clock)
	defer rollups.Stop()
	orchestrator := standup.NewOrchestrator(cfg, store, directory, engine, rollups, clock)

	if _, err := rollups.Recover(ctx); err != nil {
		log.Warnf("recovering rollups: %v", err)
	}

	scheduler := standup.NewScheduler(cfg.Location())
	if err := scheduler.Schedule(ctx, cfg.Schedule, orchestrator); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()
	log.Infof("standup for %d participants scheduled %q, next run %s",
		directory.Len(), cfg.Schedule, scheduler.Next().Format(time.RFC1123))

	if runNow {
		go func() {
			if _, err := orchestrator.RunDailyStandup(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("standup: %v", err)
			}
		}()
	}

	if err := tr.Subscribe(ctx, engine.Handle); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("inbound messages: %w", err)
	}
	// Input closed; keep serving the schedule until shutdown.
	<-ctx.Done()
	log.Infof("shutting down")
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNow, "now", false, "Run a standup immediately as well as on schedule")
}
