package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurpe/freelancehub/internal/auth"
	"github.com/nurpe/freelancehub/internal/config"
	"github.com/nurpe/freelancehub/internal/db"
	"github.com/nurpe/freelancehub/internal/excel"
	"github.com/nurpe/freelancehub/internal/filestore"
	httphandler "github.com/nurpe/freelancehub/internal/http"
	"github.com/nurpe/freelancehub/internal/http/middleware"
	"github.com/nurpe/freelancehub/internal/logger"
	"github.com/nurpe/freelancehub/internal/notify"
	"github.com/nurpe/freelancehub/internal/pdf"
	"github.com/nurpe/freelancehub/internal/repository"
	"github.com/nurpe/freelancehub/internal/repository/memory"
	"github.com/nurpe/freelancehub/internal/service"
	"github.com/nurpe/freelancehub/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.New(cfg.Environment))
		},
	}
}

type backend struct {
	store         store.Store
	notifications store.NotificationStore
	users         store.UserDirectory
	close         func()
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if !cfg.UsesPostgres() {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &backend{
			store:         memory.NewStore(),
			notifications: memory.NewNotificationStore(),
			users:         memory.NewUsers(),
			close:         func() {},
		}, nil
	}

	database, err := db.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &backend{
		store:         repository.NewStore(database),
		notifications: repository.NewNotificationRepository(database),
		users:         repository.NewUserRepository(database),
		close: func() {
			if sqlDB, err := database.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	files, err := filestore.NewLocal(cfg.Storage.UploadDir, cfg.Storage.UploadMaxBytes)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(be.notifications, log, cfg.Notify.Workers, cfg.Notify.QueueSize)

	handler := httphandler.NewHandler(httphandler.Services{
		Projects:      service.NewProjectService(be.store, be.users, dispatcher, log),
		Bids:          service.NewBidService(be.store, dispatcher, log),
		Deliverables:  service.NewDeliverableService(be.store, files, log),
		Notifications: service.NewNotificationService(be.notifications),
		Reports:       service.NewReportService(be.store, be.users, excel.NewGenerator(), pdf.NewGenerator()),
	}, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg, log)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Driver).Msg("starting freelancehub")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			_ = dispatcher.Close(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notification queue not fully drained")
	}
	return nil
}
