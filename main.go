package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	canvasApp "canvas/internal/app"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
	defer log.Sync()

	a := canvasApp.New(canvasApp.Config{Logger: log})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Startup(ctx); err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	a.Subscribe(func(event string, data any) {
		log.Debug("event", zap.String("name", event), zap.Any("data", data))
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	cancel()
	a.Shutdown(context.Background())
}
