package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"commercial-file-service/internal/handler"
	"commercial-file-service/internal/handler/authHandler"
	"commercial-file-service/internal/handler/fileHandler"
	"commercial-file-service/internal/handler/historyHandler"
	"commercial-file-service/internal/handler/notificationHandler"
	"commercial-file-service/internal/handler/referenceHandler"
	"commercial-file-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC health server and the scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	log := logger.GetLogger(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Logger: log.Zap(),
		Tokens: a.auth,
		DB:     a.pool,
	}, handler.Handlers{
		Auth:          authHandler.New(a.auth),
		Files:         fileHandler.New(a.files),
		History:       historyHandler.New(a.history),
		Notifications: notificationHandler.New(a.notifications),
		References:    referenceHandler.New(a.references),
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, health := handler.NewGRPCServer(log.Zap())
	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", httpServer.Addr))
		handler.SetServing(health, true)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc health server listening", zap.String("addr", grpcLis.Addr().String()))
		return grpcServer.Serve(grpcLis)
	})

	a.runner.Start()

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		handler.SetServing(health, false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		a.runner.Stop()
		return err
	})

	return g.Wait()
}
