package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"

	"decoder/internal/config"
)

type Dependencies struct {
	DB          *sql.DB
	NSQProducer *nsq.Producer
}

// Publisher returns the producer as a Publisher, or nil when there is none.
func (d *Dependencies) Publisher() Publisher {
	if d.NSQProducer == nil {
		return nil
	}
	return d.NSQProducer
}

func (d *Dependencies) Close() {
	if d.NSQProducer != nil {
		d.NSQProducer.Stop()
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			slog.Warn("failed to close db", "error", err)
		}
	}
}

// Bootstrap connects the optional infrastructure: Postgres (migrated) when
// DB_HOST is set, and an NSQ producer when any component uses the queue.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.HasDatabase() {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.DB = db
	}

	if usesQueue(cfg) {
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("nsq producer error: %w", err)
		}
		deps.NSQProducer = producer
		createTopics(cfg.NSQDHTTP)
	}

	return deps, nil
}

func usesQueue(cfg *config.Config) bool {
	return cfg.EnableQueue || cfg.NotifyChannel == config.NotifyEvent || cfg.DispatchMode == config.DispatchQueue
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := pingWithRetry(ctx, db, cfg.BootstrapRetryAttempts, time.Duration(cfg.BootstrapRetryDelaySeconds)*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("migration up error: %w", err)
	}
	return db, nil
}

// Pinger is the part of *sql.DB that pingWithRetry needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func pingWithRetry(ctx context.Context, db Pinger, attempts int, delay time.Duration) error {
	attempts = max(attempts, 1)
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "error", err)
		if i < attempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

func createTopics(nsqdHTTP string) {
	create := func(topic string) {
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
		resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}

	go func() {
		time.Sleep(2 * time.Second)
		create(config.TopicIntakeEmail)
		create(config.TopicDocumentPublished)
	}()
}
