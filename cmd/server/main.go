package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shiritori/internal/app"
	"shiritori/internal/config"
	"shiritori/internal/logger"
	transporthttp "shiritori/internal/transport/http"
	"shiritori/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting shiritori server",
		zap.String("env", cfg.Server.Env),
		zap.Int("port", cfg.Server.Port),
	)

	words := app.NewBuiltinWordSource(nil)
	hub := app.NewMatchHub(words, log, app.SessionOptions{
		TickInterval: cfg.Game.TickInterval,
		ThinkDelay:   cfg.Game.BotThinkDelay,
	})

	handlers := transporthttp.NewHandlers(hub, log)
	wsHandler := ws.NewHandler(hub, log)
	server := transporthttp.NewServer(cfg.Server, handlers, wsHandler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}

	hub.Close()
	log.Info("server stopped")
}
