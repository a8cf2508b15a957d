package main

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Handler http.Handler
	Addr    string
}

// StartServer starts serving in the background and returns the server.
func StartServer(scfg ServerConfig) *http.Server {
	srv := &http.Server{
		Addr:         scfg.Addr,
		Handler:      scfg.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Ledger stub listening on %s", scfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	return srv
}

// GracefulShutdown drains in-flight requests for up to timeout.
func GracefulShutdown(srv *http.Server, timeout time.Duration) {
	log.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down server: %v", err)
	}

	log.Info("Server stopped")
}
