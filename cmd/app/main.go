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

	"class-panel/internal/config"
	"class-panel/internal/http-server/router"
	"class-panel/internal/lock"
	svc "class-panel/internal/service"
	slogpretty "class-panel/pkg/handlers/slogPretty"
	"class-panel/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting class panel", slog.String("env", cfg.Env), slog.String("course", cfg.Course))
	log.Debug("Debug messages are enabled")

	locker, err := setupLocker(cfg.RedisAddr, log)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(log, locker, svc.Options{
		Course:   cfg.Course,
		Segments: cfg.Segments,
		Refresh:  cfg.RefreshInterval,
	})

	if err := service.Claim(context.Background()); err != nil {
		log.Error("Another panel is already running for this course", sl.Err(err))
		_ = locker.Close()
		os.Exit(1)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := service.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Session loop stopped unexpectedly", sl.Err(err))
		}
	}()

	serv := &http.Server{
		Addr:        cfg.Address,
		Handler:     router.New(log, service),
		ReadTimeout: cfg.HTTPServer.Timeout,
		// no WriteTimeout: /session/stream stays open while the timer runs
		IdleTimeout: cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	// open event streams end when the session loop closes their subscriptions
	stopLoop()
	<-loopDone

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := service.Release(ctx); err != nil {
		log.Error("Failed to release panel lock", sl.Err(err))
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLocker(redisAddr string, log *slog.Logger) (lock.Locker, error) {
	if redisAddr == "" {
		log.Info("No redis configured, using in-memory locks")
		return lock.NewMemoryLock(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	locker, err := lock.NewRedisLock(ctx, redisAddr)
	if err != nil {
		return nil, err
	}
	log.Info("Using redis locks", slog.String("addr", redisAddr))

	return locker, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
