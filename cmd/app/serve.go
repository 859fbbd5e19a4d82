package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/worker"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}

	stores, err := repo.Open(ctx, cfg.Driver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer stores.Close()
	logger.Info("connected to the database", zap.String("driver", cfg.Driver))

	if migrate {
		if err := stores.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	tasks := service.NewTaskService(stores.Tasks,
		service.WithLogger(logger),
		service.WithLocation(cfg.Location),
	)

	refresher := worker.NewRefresher(tasks, logger, cfg.RefreshInterval)
	refresher.Start(ctx)
	defer refresher.Stop()

	router := handler.NewRouter(
		handler.NewTaskHandler(tasks, logger),
		handler.NewUserHandler(stores.Users, logger),
		logger,
	)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
