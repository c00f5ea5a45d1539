package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/nbukhari/diwan/internal/config"
	"github.com/nbukhari/diwan/internal/logging"
	"github.com/nbukhari/diwan/internal/notify"
	"github.com/nbukhari/diwan/internal/notify/discord"
	"github.com/nbukhari/diwan/internal/notify/slack"
	"github.com/nbukhari/diwan/internal/sweep"
	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Run the notification daemon",
		Long: `Tails the task activity log, writes in-app notifications, posts task
events to the configured chat platform, and fires the due-date reminder
sweep on its cron schedule. Stops cleanly on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotify(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	return cmd
}

func runNotify(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sender *notify.Sender
	adapter, err := buildAdapter(cfg)
	if err != nil {
		return err
	}
	if adapter != nil {
		if err := adapter.Connect(ctx); err != nil {
			return fmt.Errorf("connect %s: %w", cfg.Notify.Platform, err)
		}
		defer adapter.Close()
		sender = notify.NewSender(adapter)
		fmt.Fprintf(out, "Chat delivery enabled via %s\n", cfg.Notify.Platform)
	}

	watcher, err := notify.NewWatcher(notify.WatcherOpts{
		DB:           gormDB,
		Sender:       sender,
		Channel:      cfg.Notify.Channel,
		PollInterval: time.Duration(cfg.Notify.PollIntervalSec) * time.Second,
	})
	if err != nil {
		return err
	}

	sweeper, err := sweep.New(sweep.Opts{
		DB:          gormDB,
		Cron:        cfg.Sweep.Cron,
		DueSoonDays: cfg.Sweep.DueSoonDays,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Notification daemon running (poll %ds, sweep %q)\n",
		cfg.Notify.PollIntervalSec, cfg.Sweep.Cron)

	errCh := make(chan error, 2)
	go func() { errCh <- watcher.Run(ctx) }()
	go func() { errCh <- sweeper.Run(ctx) }()

	err = <-errCh
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Notification daemon stopped.")
		return nil
	}
	return err
}

// buildAdapter creates the chat adapter for the configured platform, or
// nil when chat delivery is disabled.
func buildAdapter(cfg *config.Config) (notify.Adapter, error) {
	switch cfg.Notify.Platform {
	case "slack":
		return slack.New(slack.AdapterOpts{
			BotToken:  cfg.Notify.SlackBotToken,
			ChannelID: cfg.Notify.Channel,
		})
	case "discord":
		return discord.New(discord.AdapterOpts{
			BotToken:  cfg.Notify.DiscordToken,
			ChannelID: cfg.Notify.Channel,
		})
	default:
		return nil, nil
	}
}
