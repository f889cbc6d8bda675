package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"decoder/internal/app"
	"decoder/internal/config"
	"decoder/internal/logger"
	"decoder/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:           "decoder",
	Short:         "Analyse messages and documents and publish them as structured pages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the intake webhook, manual export, decode and OAuth endpoints.
With ENABLE_QUEUE set, also consumes queued mailbox payloads.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return run(ctx, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	application, err := app.New(ctx, cfg, deps.DB, deps.Publisher(), nil)
	if err != nil {
		return err
	}

	if cfg.EnableQueue {
		consumer, err := worker.Subscribe(config.TopicIntakeEmail, cfg.IntakeChannel, cfg.NSQDHost, application.IntakeConsumer)
		if err != nil {
			return err
		}
		defer consumer.Stop()
		slog.Info("intake consumer connected", "topic", config.TopicIntakeEmail, "channel", cfg.IntakeChannel)
	}

	return application.Run(ctx)
}
