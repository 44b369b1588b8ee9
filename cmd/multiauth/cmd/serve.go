package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/multiAuth/internal/httpapi"
	"github.com/MrEthical07/multiAuth/metrics/export/prometheus"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authentication HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := appConfig

		rdb, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		users, err := openUserStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer users.Close()

		if autoMigrate {
			if err := users.Migrate("up"); err != nil {
				return fmt.Errorf("failed to migrate user database: %w", err)
			}
		}

		engine, err := buildEngine(cfg, rdb, users, logger)
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}
		defer engine.Close()

		opts := []httpapi.Option{
			httpapi.WithLogger(logger),
			httpapi.WithSecureCookies(cfg.CookieSecure),
		}
		if cfg.MetricsEnabled {
			opts = append(opts, httpapi.WithMetricsHandler(prometheus.NewExporter(engine).Handler()))
		}
		api := httpapi.New(engine, opts...)

		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		logger.Info("listening", "addr", cfg.HTTPAddr, "database", cfg.DatabaseDriver)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply pending user database migrations before serving")
}
