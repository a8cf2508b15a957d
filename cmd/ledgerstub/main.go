package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/infrastructure/ledgerstub"
	httpapi "bankclient/internal/interfaces/http"
	"bankclient/internal/shared/auth"
	"bankclient/internal/shared/config"
	"bankclient/internal/shared/logging"
	"bankclient/internal/shared/telemetry"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closer, err := logging.Setup(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer closer.Close()

	secret, err := cfg.Stub.StubSecret()
	if err != nil {
		return err
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warnf("Telemetry shutdown: %v", err)
		}
	}()

	bank := ledgerstub.NewBank(auth.Passwords{})
	tokens := auth.NewTokens(secret, tokenTTL)
	router := httpapi.NewRouter(bank, tokens, httpapi.RouterOptions{RateLimit: cfg.Stub.RateLimit})

	srv := StartServer(ServerConfig{Handler: router, Addr: ":" + cfg.Stub.Port})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, shutdownTimeout)
	return nil
}
