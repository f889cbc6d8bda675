package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"decoder/features/decode"
	"decoder/features/export"
	"decoder/features/intake"
	"decoder/features/job"
	"decoder/features/oauth"
	"decoder/features/stats"
	"decoder/internal/adapter/gemini"
	"decoder/internal/adapter/groq"
	"decoder/internal/adapter/notion"
	"decoder/internal/analysis"
	"decoder/internal/audit"
	"decoder/internal/config"
	"decoder/internal/content"
	"decoder/internal/insight"
	"decoder/internal/ledger"
	"decoder/internal/middleware"
	"decoder/internal/notify"
	"decoder/internal/publish"
	"decoder/internal/ratelimit"
	"decoder/internal/worker"
)

// Publisher is the NSQ producer surface the app needs.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// Options replaces the external collaborators, mainly for tests. Nil fields
// are built from configuration.
type Options struct {
	Analyzer  analysis.Analyzer
	Store     publish.Store
	Notifier  notify.Notifier
	Extractor decode.ContentExtractor
}

type App struct {
	Handler        http.Handler
	IntakeService  *intake.Service
	IntakeConsumer *worker.IntakeConsumer
	port           int
}

// New wires the HTTP surface. db and pub may be nil: without a database the
// ledger and the failed-job endpoints are off, without a producer the event
// notifier and job retry are.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, pub Publisher, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	rules, err := insight.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	extractor := insight.New(rules)

	auditLog, err := audit.NewFileLogger(cfg.AuditLogPath)
	if err != nil {
		slog.Warn("failed to create audit logger, falling back to stdout", "error", err)
		auditLog = audit.NewLogger(os.Stdout)
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		if analyzer, err = newAnalyzer(ctx, cfg); err != nil {
			return nil, err
		}
	}

	store := opts.Store
	if store == nil {
		store = newStore(cfg)
	}
	publisher := publish.NewPublisher(store, publish.WithAudit(auditLog))

	notifier := opts.Notifier
	if notifier == nil {
		notifier = newNotifier(cfg, pub)
	}

	var contentExtractor decode.ContentExtractor = content.New(content.WithMaxPDFPages(cfg.MaxPDFPages))
	if opts.Extractor != nil {
		contentExtractor = opts.Extractor
	}

	// Feature: Intake
	intakeOpts := []intake.Option{intake.WithAppLink(cfg.AppURL)}
	if db != nil {
		intakeOpts = append(intakeOpts, intake.WithLedger(ledger.NewPostgresRepo(db)))
	}
	intakeService := intake.NewService(analyzer, extractor, publisher, notifier, intakeOpts...)
	intakeHandler := intake.NewHandler(intakeService, cfg.IntakeTimeout)

	// Feature: Export
	exportHandler := export.NewHandler(export.NewService(publisher, extractor, cfg.AppURL))

	// Feature: Decode
	decodeHandler := decode.NewHandler(decode.NewService(analyzer, contentExtractor))

	// Feature: OAuth
	oauthHandler := oauth.NewHandler(oauth.NewConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI))

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /automation/webhook", middleware.RequestID(middleware.RequireSecret(cfg.WebhookSecret, http.HandlerFunc(intakeHandler.Webhook))))
	mux.Handle("/automation/manual-export", middleware.RequestID(enableCORS(methodPost(exportHandler.ManualExport))))
	mux.Handle("/decode", middleware.RequestID(enableCORS(methodPost(decodeHandler.Decode))))

	mux.Handle("GET /oauth/google/init", middleware.RequestID(http.HandlerFunc(oauthHandler.Init)))
	mux.Handle("GET /oauth/google/callback", middleware.RequestID(http.HandlerFunc(oauthHandler.Callback)))

	// Feature: Job and Stats need the database
	var jobs worker.FailedJobSaver
	if db != nil {
		jobRepo := job.NewPostgresRepo(db)
		jobService := job.NewService(jobRepo, pub)
		jobHandler := job.NewHandler(jobService)
		jobs = jobService

		statsHandler := stats.NewHandler(ledger.NewPostgresRepo(db), jobRepo)

		mux.Handle("GET /jobs/failed", middleware.RequestID(enableCORS(jobHandler.List)))
		mux.Handle("POST /jobs/{id}/retry", middleware.RequestID(enableCORS(jobHandler.Retry)))
		mux.Handle("GET /stats", middleware.RequestID(enableCORS(statsHandler.GetStats)))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:        mux,
		IntakeService:  intakeService,
		IntakeConsumer: worker.NewIntakeConsumer(intakeService, jobs, cfg.IntakeTimeout, cfg.IntakeMaxAttempts),
		port:           cfg.ServerPort,
	}, nil
}

// methodPost lets the CORS preflight through and rejects every other
// non-POST method.
func methodPost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST, OPTIONS")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func newAnalyzer(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
	switch cfg.AnalyzerProvider {
	case config.ProviderGemini:
		a, err := gemini.NewAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if errors.Is(err, analysis.ErrNotConfigured) {
			slog.Warn("GEMINI_API_KEY not set, analysis requests will fail")
			return analysis.Unavailable{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		return a, nil
	default:
		if cfg.GroqAPIKey == "" {
			slog.Warn("GROQ_API_KEY not set, analysis requests will fail")
			return analysis.Unavailable{}, nil
		}
		return groq.NewClient(cfg.GroqAPIKey, groq.WithModel(cfg.GroqModel)), nil
	}
}

// newStore returns nil when the store is not configured; the publisher then
// fails every request with publish.ErrNotConfigured.
func newStore(cfg *config.Config) publish.Store {
	s, err := notion.NewStore(cfg.NotionToken, cfg.NotionDatabaseID, notion.WithLimiter(ratelimit.New(cfg.NotionRPS, 1)))
	if err != nil {
		slog.Warn("document store not configured", "error", err)
		return nil
	}
	return s
}

func newNotifier(cfg *config.Config, pub Publisher) notify.Notifier {
	switch cfg.NotifyChannel {
	case config.NotifyWhatsApp:
		n, err := notify.NewWhatsApp(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, cfg.TwilioWhatsAppTo)
		if err != nil {
			slog.Warn("whatsapp notifier not configured, notifications disabled", "error", err)
			return notify.Disabled{}
		}
		return n
	case config.NotifyEvent:
		if pub == nil {
			slog.Warn("no queue producer, notifications disabled")
			return notify.Disabled{}
		}
		return notify.NewEvent(pub, config.TopicDocumentPublished)
	}
	return notify.Disabled{}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
