package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"decoder/internal/app"
	"decoder/internal/config"
	"decoder/internal/ledger"
	"decoder/internal/mailbox"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the Gmail inbox and dispatch new messages",
	Long: `Drains every unread inbox message, then polls the mailbox history for new
ones. Each message is marked read, filtered, and dispatched to the intake
webhook or the intake queue depending on DISPATCH_MODE.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "drain unread messages and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateWatcher(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	w, err := newWatcher(ctx, cfg, deps)
	if err != nil {
		return err
	}
	if watchOnce {
		return w.Drain(ctx)
	}
	return w.Run(ctx)
}

func newWatcher(ctx context.Context, cfg *config.Config, deps *app.Dependencies) (*mailbox.Watcher, error) {
	ts := mailbox.TokenSource(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken)
	gm, err := mailbox.NewGmail(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}

	var d mailbox.Dispatcher
	switch cfg.DispatchMode {
	case config.DispatchQueue:
		pub := deps.Publisher()
		if pub == nil {
			return nil, fmt.Errorf("%w: NSQD_HOST", config.ErrMissingRequired)
		}
		d = mailbox.NewQueueDispatcher(pub, config.TopicIntakeEmail)
	default:
		d = mailbox.NewWebhookDispatcher(cfg.WebhookURL, cfg.WebhookSecret, cfg.IntakeTimeout)
	}

	opts := []mailbox.WatcherOption{
		mailbox.WithPollInterval(cfg.PollInterval),
		mailbox.WithAutoReplyIndicators(cfg.AutoReplyIndicators),
	}
	if deps.DB != nil {
		opts = append(opts, mailbox.WithLedger(ledger.NewPostgresRepo(deps.DB)))
	}
	slog.InfoContext(ctx, "mailbox watcher configured", "dispatch", cfg.DispatchMode, "ledger", deps.DB != nil)
	return mailbox.NewWatcher(gm, d, opts...), nil
}
