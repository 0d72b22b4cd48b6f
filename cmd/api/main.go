package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/webyarden/webyarden-backend/api/routes"
	"github.com/webyarden/webyarden-backend/internal/auth"
	"github.com/webyarden/webyarden-backend/internal/catalog"
	"github.com/webyarden/webyarden-backend/internal/contacts"
	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/quotes"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/internal/users"
	"github.com/webyarden/webyarden-backend/pkg/auth/session"
	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/env"
	"github.com/webyarden/webyarden-backend/pkg/instance"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/mailer"
	"github.com/webyarden/webyarden-backend/pkg/metrics"
	"github.com/webyarden/webyarden-backend/pkg/migrate"
	"github.com/webyarden/webyarden-backend/pkg/redis"
	"github.com/webyarden/webyarden-backend/pkg/richtext"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	readCache, err := cache.New(redisClient, cfg.Cache.TTL, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pricing := metrics.NewPricingMetrics(registry)
	renderer := richtext.New()

	params := routes.Params{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Store:    redisClient,
		Sessions: sessionManager,
		Gatherer: registry,
		HTTP:     metrics.NewHTTPMetrics(registry),
	}

	if params.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	}); err != nil {
		return err
	}
	if params.Register, err = auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		AuthConfig:     cfg.Auth,
		Logger:         logg,
	}); err != nil {
		return err
	}
	if params.Discounts, err = discounts.NewService(discounts.ServiceParams{
		DB:      dbClient,
		Catalog: catalog.NewLookup(dbClient.DB()),
		Cache:   readCache,
		Metrics: pricing,
		Logger:  logg,
	}); err != nil {
		return err
	}
	if params.Quotes, err = quotes.NewService(quotes.ServiceParams{
		DB:        dbClient,
		Discounts: params.Discounts,
		Metrics:   pricing,
		Logger:    logg,
	}); err != nil {
		return err
	}
	if params.Services, err = services.NewService(services.ServiceParams{
		DB:       dbClient,
		Markdown: renderer,
		Cache:    readCache,
		Logger:   logg,
	}); err != nil {
		return err
	}
	if params.Packs, err = packs.NewService(packs.ServiceParams{DB: dbClient, Cache: readCache, Logger: logg}); err != nil {
		return err
	}
	if params.Projects, err = projects.NewService(projects.ServiceParams{DB: dbClient, Cache: readCache, Logger: logg}); err != nil {
		return err
	}
	if params.Contacts, err = contacts.NewService(contacts.ServiceParams{
		DB:        dbClient,
		Sanitizer: renderer,
		Notifier:  mailer.New(cfg.Sendgrid),
		Logger:    logg,
	}); err != nil {
		return err
	}

	addr := ":" + env.Port(cfg.App.Port)
	ctx := logg.WithFields(bootCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(params),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
