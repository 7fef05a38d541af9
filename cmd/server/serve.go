package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"invoice-backend/internal/auth"
	"invoice-backend/internal/cache"
	"invoice-backend/internal/config"
	"invoice-backend/internal/database"
	"invoice-backend/internal/db"
	"invoice-backend/internal/events"
	"invoice-backend/internal/handlers"
	"invoice-backend/internal/health"
	h "invoice-backend/internal/http"
	"invoice-backend/internal/logger"
	"invoice-backend/internal/metrics"
	"invoice-backend/internal/middleware"
	"invoice-backend/internal/repositories"
	"invoice-backend/internal/services"
	"invoice-backend/internal/storage"

	"github.com/spf13/cobra"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("server")

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !skipMigrations {
		if err := database.NewMigrator(pool).RunMigrations(ctx); err != nil {
			return err
		}
	}

	invoiceCache := openCache(cfg)
	defer invoiceCache.Close()

	var logos services.LogoUploader
	if cfg.Storage.Enabled {
		store, err := storage.NewLogoStore(ctx, cfg)
		if err != nil {
			return err
		}
		logos = store
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("logo storage enabled")
	}

	hub := events.NewHub(cfg.Server.CorsAllowedOrigins)
	go hub.Run(ctx)

	// Repositories
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	accountRepo := repositories.NewAccountRepository(pool)

	collector := metrics.NewCollector(func() metrics.PoolSnapshot {
		stat := pool.Stat()
		return metrics.PoolSnapshot{
			Total:    stat.TotalConns(),
			Idle:     stat.IdleConns(),
			Acquired: stat.AcquiredConns(),
		}
	}, invoiceRepo, 30*time.Second)
	collector.Start()
	defer collector.Stop()

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	cookies := auth.NewSessionCookies(cfg.JWT.CookieName, cfg.Server.CookieSecure)
	accountService := services.NewAccountService(accountRepo, jwtManager, invoiceCache, logos)
	invoiceService := services.NewInvoiceService(invoiceRepo, invoiceCache, hub)

	router := h.NewRouter(h.Handlers{
		Invoice: handlers.NewInvoiceHandler(invoiceService, accountService),
		Auth:    handlers.NewAuthHandler(accountService, cookies),
		Account: handlers.NewAccountHandler(accountService, cfg.Storage.MaxLogoBytes),
		Events:  handlers.NewEventsHandler(hub),
		Health:  handlers.NewHealthHandler(health.NewHealthChecker(pool, invoiceCache)),
	}, middleware.NewAuthMiddleware(jwtManager, cookies, accountService))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h.Wrap(cfg, router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("environment", cfg.Server.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openCache connects to Redis when enabled. An unreachable server degrades
// to a disabled cache instead of failing startup.
func openCache(cfg *config.Config) *cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.Disabled()
	}

	log := logger.WithComponent("cache")
	c, err := cache.New(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, caching disabled")
		return c
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache enabled")
	return c
}
