package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/jeettech-root/QuickShare-P2P/internal/logging"
	"github.com/jeettech-root/QuickShare-P2P/internal/relay"
)

func main() {
	logger := logging.Init(slog.LevelInfo)
	cfg := config.LoadRelay()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink relay.FeedbackSink = relay.NewLogFeedbackSink(logger)
	if cfg.Redis.Addr != "" {
		redisSink, err := relay.NewRedisFeedbackSink(ctx, cfg.Redis)
		if err != nil {
			logger.Error("redis unavailable, feedback will only be logged", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer redisSink.Close()
			sink = redisSink
		}
	}

	hub := relay.NewHub(sink, logger)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           relay.NewRouter(hub, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting signaling relay", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
