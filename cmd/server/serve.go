package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "layout-proxy/docs"
	"layout-proxy/internal/cache"
	"layout-proxy/internal/config"
	"layout-proxy/internal/database"
	"layout-proxy/internal/handlers"
	"layout-proxy/internal/layout"
	"layout-proxy/internal/logging"
	"layout-proxy/internal/rules"
	"layout-proxy/internal/service"
	"layout-proxy/internal/upstream"
)

const shutdownTimeout = 15 * time.Second

// ServeCmd runs the HTTP proxy.
func ServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout proxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)
	logger, err := logging.New(cfg.LogLevel, cfg.GinMode != gin.ReleaseMode)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	set, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return err
	}
	logger.Info("Rules loaded", zap.String("file", cfg.RulesFile), zap.Int("rules", set.Len()))

	patcher := layout.NewPatcher(
		layout.WithFieldPolicy(cfg.FieldPolicy),
		layout.WithSkipApplied(cfg.SkipApplied),
		layout.WithLogger(logger.Named("patcher")),
	)
	layoutClient := upstream.NewLayoutClient(cfg.LayoutServiceURL, cfg.LayoutServicePath, cfg.APIKey, cfg.UpstreamTimeout)
	graphClient := upstream.NewGraphQLClient(cfg.GraphQLEndpoint, cfg.APIKey, cfg.UpstreamTimeout)

	var responses service.ResponseCache
	if cfg.CacheEnabled {
		db, err := database.Connect(cfg.DBDriver, cfg.DBDSN, logger)
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck
		store := cache.New(db, cfg.CacheTTL)
		if err := store.Migrate(); err != nil {
			return err
		}
		responses = store
	}

	h := &handlers.Handler{
		Layout:         service.NewLayoutService(layoutClient, set, patcher, logger.Named("layout")),
		Graph:          service.NewGraphService(graphClient, set, patcher, responses, logger.Named("graph")),
		ForwardHeaders: cfg.ForwardHeaders,
		Logger:         logger,
	}

	router := gin.New()
	router.Use(handlers.RequestID(), handlers.Logger(logger), handlers.Recovery(logger))
	h.RegisterRoutes(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if store, ok := responses.(*cache.Store); ok {
		eg.Go(func() error {
			purgeExpired(egCtx, store, cfg.CacheTTL, logger)
			return nil
		})
	}
	return eg.Wait()
}

// purgeExpired deletes expired cache entries every ttl until ctx is done.
func purgeExpired(ctx context.Context, store *cache.Store, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				logger.Warn("Cache purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("Cache purged", zap.Int64("entries", n))
			}
		}
	}
}
