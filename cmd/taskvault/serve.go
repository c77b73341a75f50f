package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"taskvault/internal/config"
	"taskvault/internal/server"
	"taskvault/internal/storage"
	"taskvault/internal/storage/mongo"
	"taskvault/internal/storage/sqlite"
	"taskvault/internal/suggest"
	"taskvault/internal/telemetry"
)

const version = "1.0.0"

var (
	flagAddr   string
	flagDB     string
	flagStatic string
	flagStore  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the built frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyServeFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (default $TASKVAULT_ADDR)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "Path to sqlite database file (default $TASKVAULT_DB_PATH)")
	serveCmd.Flags().StringVar(&flagStatic, "static", "", "Directory with built frontend (default $TASKVAULT_STATIC_DIR)")
	serveCmd.Flags().StringVar(&flagStore, "store", "", "Storage backend: sqlite or mongo (default $TASKVAULT_STORE)")
}

// applyServeFlags lets explicit flags win over the environment.
func applyServeFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("addr") {
		cfg.Addr = flagAddr
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDB
	}
	if cmd.Flags().Changed("static") {
		cfg.StaticDir = flagStatic
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = flagStore
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := cfg.NewLogger(os.Stdout)
	logger.Info("TaskVault server", slog.String("version", version), slog.String("store", cfg.Store))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "taskvault", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(store, logger, server.Options{
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins(),
		AuthSecret:     cfg.AuthSecret,
		Remote:         newRemote(cfg, logger),
		SuggestTimeout: cfg.SuggestTimeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// newRemote always returns a client so /ai/suggest and board suggestions
// agree: without a token every call resolves to the canned fallback.
func newRemote(cfg config.Config, logger *slog.Logger) suggest.Suggester {
	if cfg.InferenceToken == "" {
		logger.Warn("HF_TOKEN not set; serving canned suggestions")
	}
	return suggest.NewClient(suggest.ClientConfig{
		BaseURL: cfg.InferenceURL,
		Token:   cfg.InferenceToken,
		Logger:  logger,
	})
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := mongo.Open(connectCtx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	}
}
