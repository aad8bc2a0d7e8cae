package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lawoffice/internal/adapters/cache"
	"lawoffice/internal/adapters/email"
	"lawoffice/internal/adapters/events"
	web "lawoffice/internal/adapters/http"
	"lawoffice/internal/adapters/logging"
	"lawoffice/internal/adapters/monitoring"
	"lawoffice/internal/adapters/objectstore"
	"lawoffice/internal/adapters/search"
	"lawoffice/internal/adapters/session"
	"lawoffice/internal/adapters/storage"
	accountStore "lawoffice/internal/adapters/storage/account"
	appointmentStore "lawoffice/internal/adapters/storage/appointment"
	blogStore "lawoffice/internal/adapters/storage/blog"
	clientStore "lawoffice/internal/adapters/storage/client"
	documentStore "lawoffice/internal/adapters/storage/document"
	inquiryStore "lawoffice/internal/adapters/storage/inquiry"
	caseStore "lawoffice/internal/adapters/storage/legalcase"
	profileStore "lawoffice/internal/adapters/storage/profile"
	"lawoffice/internal/application/orchestrators"
	"lawoffice/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// searchIndexName is the Elasticsearch index holding published posts.
const searchIndexName = "blog_posts"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "lawoffice",
		Short:         "Law office website and back-office",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), envFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			defer a.close()
			slog.Info("migrations_applied", "dialect", a.dialect)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD when none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			defer a.close()
			return seedAdmin(cmd.Context(), a)
		},
	})
	return root
}

// app holds what every subcommand needs: config, a migrated database and
// the stores over it.
type app struct {
	cfg     config.Config
	db      *sql.DB
	dialect storage.Dialect
	stores  *web.Stores
	flush   func()
}

func (a *app) close() {
	a.db.Close()
	sentry.Flush(2 * time.Second)
	a.flush()
}

// setup loads config, installs logging and error reporting, then opens
// and migrates the database.
func setup(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	flush := logging.Install(logger)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     version,
		}); err != nil {
			slog.Warn("sentry_init_failed", "error", err)
		}
	}

	db, dialect, err := storage.Open(ctx, cfg.BackendURL)
	if err != nil {
		flush()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(db, dialect); err != nil {
		db.Close()
		flush()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	timed := storage.NewTimedDB(db, dialect, cfg.SlowQuery())
	stores := &web.Stores{
		AccountStore:     accountStore.NewSQLStore(timed),
		ProfileStore:     profileStore.NewSQLStore(timed),
		BlogStore:        blogStore.NewSQLStore(timed),
		ClientStore:      clientStore.NewSQLStore(timed),
		CaseStore:        caseStore.NewSQLStore(timed),
		DocumentStore:    documentStore.NewSQLStore(timed),
		InquiryStore:     inquiryStore.NewSQLStore(timed),
		AppointmentStore: appointmentStore.NewSQLStore(timed),
	}
	return &app{cfg: cfg, db: db, dialect: dialect, stores: stores, flush: flush}, nil
}

func seedAdmin(ctx context.Context, a *app) error {
	return orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{
		AccountStore: a.stores.AccountStore,
		ProfileStore: a.stores.ProfileStore,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	}, a.cfg.AdminEmail, a.cfg.AdminPassword)
}

func serve(parent context.Context, envFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, envFile)
	if err != nil {
		return err
	}
	defer a.close()
	if err := seedAdmin(ctx, a); err != nil {
		return err
	}

	svc, closeServices, err := buildServices(ctx, a)
	if err != nil {
		return err
	}
	defer closeServices()

	monitoring.Register(prometheus.DefaultRegisterer)

	done := make(chan struct{})
	defer close(done)
	mux := web.NewMux(a.stores, svc, web.Options{
		CSRFKey:            []byte(a.cfg.BackendKey)[:config.MinKeyLength],
		Secure:             a.cfg.IsProduction(),
		TrustedOrigins:     a.cfg.AllowedOrigins(),
		CORSOrigins:        a.cfg.AllowedOrigins(),
		RateLimitPerSecond: a.cfg.RateLimitPerSecond,
		SlowRequest:        a.cfg.SlowRequest(),
		OfficeEmail:        a.cfg.OfficeEmail,
		Location:           a.cfg.Location(),
		Done:               done,
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", a.cfg.Addr, "env", a.cfg.Env, "dialect", a.dialect)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	metricsSrv := startMetricsServer(a.cfg.MetricsAddr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutdown_signal_received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics_shutdown_failed", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_failed", "error", err)
		return err
	}
	slog.Info("server_stopped")
	return nil
}

// startMetricsServer serves /metrics on its own listener, kept off the
// public router. An empty addr disables it.
func startMetricsServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("metrics_server_starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics_server_failed", "addr", addr, "error", err)
		}
	}()
	return srv
}

// buildServices picks each integration from config: a real backend when
// its setting is present, the no-op otherwise. The returned func closes
// whatever was opened.
func buildServices(ctx context.Context, a *app) (*web.Services, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("close_failed", "error", err)
			}
		}
	}

	auth := session.AuthenticatorFunc(func(ctx context.Context, email, password string) (string, string, error) {
		res, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{Email: email, Password: password}, orchestrators.LoginDeps{
			AccountStore: a.stores.AccountStore,
			Now:          time.Now,
		})
		return res.AccountID, res.Email, err
	})
	var backend session.Backend = session.NewMemoryBackend()
	if a.cfg.RedisURL != "" {
		redisBackend, err := session.NewRedisBackend(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis sessions: %w", err)
		}
		closers = append(closers, redisBackend.Close)
		backend = redisBackend
		slog.Info("sessions_configured", "backend", "redis")
	}

	svc := &web.Services{
		Sessions: session.NewProvider(backend, auth, a.stores.ProfileStore),
		Cache:    cache.NewPostCache(cache.DefaultTTL),
	}

	if a.cfg.ResendKey != "" {
		svc.Sender = email.NewResendSender(a.cfg.ResendKey, a.cfg.EmailFrom)
		slog.Info("email_configured", "provider", "resend")
	} else {
		svc.Sender = email.NewNoopSender()
		if a.cfg.IsProduction() {
			slog.Warn("email_disabled", "reason", "RESEND_KEY is not set")
		}
	}

	if a.cfg.KafkaBrokers != "" {
		pub, err := events.NewKafkaPublisher(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("kafka publisher: %w", err)
		}
		closers = append(closers, pub.Close)
		svc.Events = pub
		slog.Info("events_configured", "topic", a.cfg.KafkaTopic)
	}

	if a.cfg.ElasticsearchURL != "" {
		idx, err := search.NewElasticIndex(a.cfg.ElasticsearchURL, searchIndexName)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("search index: %w", err)
		}
		if err := idx.Ping(ctx); err != nil {
			slog.Warn("search_index_unreachable", "error", err)
		}
		svc.Index = idx
	}

	objects, err := objectstore.NewLocal(a.cfg.UploadDir, a.cfg.PublicBaseURL)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("object store: %w", err)
	}
	svc.Objects = objects
	svc.Uploads = objects

	return svc, closeAll, nil
}
