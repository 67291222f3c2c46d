package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/neomorfeo/rentiq/internal/adapter/auth"
	"github.com/neomorfeo/rentiq/internal/adapter/faceid"
	"github.com/neomorfeo/rentiq/internal/adapter/fsm"
	handler "github.com/neomorfeo/rentiq/internal/adapter/http"
	"github.com/neomorfeo/rentiq/internal/adapter/mail"
	rotel "github.com/neomorfeo/rentiq/internal/adapter/otel"
	"github.com/neomorfeo/rentiq/internal/adapter/redis"
	"github.com/neomorfeo/rentiq/internal/adapter/river"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/adapter/storage"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/config"
	"github.com/neomorfeo/rentiq/internal/domain"
	"github.com/neomorfeo/rentiq/internal/logging"
)

const (
	filesPath       = "/files"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

// serve runs the API until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	policy, err := app.ParsePurgePolicy(cfg.App.PurgePolicy)
	if err != nil {
		return err
	}
	lang, err := language.Parse(cfg.Notify.Language)
	if err != nil {
		return fmt.Errorf("parsing NOTIFY_LANGUAGE: %w", err)
	}

	// --- Observability ---
	providers, err := rotel.Setup(ctx, rotel.Config{
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.OTel.ServiceVersion,
		Environment:    cfg.OTel.Environment,
		Exporter:       cfg.OTel.Exporter,
		Insecure:       cfg.Insecure(),
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	// --- Adapters (out) ---
	db, err := rotel.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	store, err := sqlite.NewFromDB(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()
	traced := rotel.NewTracingStore(store)
	validator := fsm.New()

	files, err := newFileStore(cfg)
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}
	cache, err := newCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	var invoices *app.InvoiceService
	jobs, err := river.Setup(ctx, db, river.Options{
		Mailer:           newMailer(cfg, logger),
		Payee:            cfg.Payee(),
		Language:         lang,
		Reminders:        river.ReminderFunc(func(ctx context.Context) ([]domain.BillingNotice, error) { return invoices.DueReminders(ctx) }),
		ReminderSchedule: cfg.Notify.ReminderSchedule,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}

	// --- Application ---
	notifier := rotel.NewTracingNotifier(river.NewNotifier(jobs))
	matcher := rotel.NewTracingFaceMatcher(faceid.NewClient(cfg.FaceID.URL, cfg.FaceID.Timeout, logger))
	billing := app.Billing{Tariff: cfg.Tariff(), Payee: cfg.Payee()}

	users := app.NewUserService(traced, logger)
	invoices = app.NewInvoiceService(traced, validator, notifier, app.RoleScope, billing, logger)
	services := handler.Services{
		Branches:  app.NewBranchService(traced, validator, policy, logger),
		Rooms:     app.NewRoomService(traced, validator, logger),
		Contracts: app.NewContractService(traced, validator, app.RoleScope, logger),
		Invoices:  invoices,
		Users:     users,
		Access:    app.NewAccessService(traced, users, matcher, logger),
		Dashboard: app.NewDashboardService(traced, cache, cfg.Redis.TTL, logger),
		Tokens:    tokens,
		Files:     files,
	}

	// --- Adapters (in) ---
	router := newRouter(cfg, logger, tokens)
	if disk, ok := files.(*storage.Disk); ok {
		router.Handle(filesPath+"/*", http.StripPrefix(filesPath+"/", http.FileServer(http.Dir(disk.Dir()))))
	}
	api := humachi.New(router, handler.Config("rentiq", cfg.OTel.ServiceVersion))
	handler.Register(api, services)

	// --- Workers ---
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rentiq listening", zap.String("addr", srv.Addr), zap.String("docs", "/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Warn("river shutdown", zap.Error(err))
	}

	if serveErr != nil {
		return fmt.Errorf("server: %w", serveErr)
	}
	logger.Info("stopped")
	return nil
}

func newRouter(cfg *config.Config, logger *zap.Logger, tokens *auth.Tokens) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.App.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	router.Use(otelchi.Middleware(cfg.OTel.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(logging.RequestLogger(logger))
	router.Use(auth.Middleware(tokens))
	return router
}

func newFileStore(cfg *config.Config) (domain.FileStore, error) {
	if cfg.Storage.CloudinaryURL != "" {
		return storage.NewCloudinary(cfg.Storage.CloudinaryURL, cfg.Storage.CloudinaryFolder)
	}
	return storage.NewDisk(cfg.Storage.UploadDir, filesPath)
}

// newCache returns nil when no Redis address is configured.
func newCache(ctx context.Context, cfg *config.Config) (domain.Cache, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	return redis.NewCache(client, "rentiq:"), nil
}

func newMailer(cfg *config.Config, logger *zap.Logger) domain.Mailer {
	if cfg.SMTP.Host == "" {
		return mail.NewLog(logger)
	}
	return mail.NewSMTP(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
