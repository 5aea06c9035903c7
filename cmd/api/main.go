package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-assets-api/internal"
	"campus-assets-api/internal/config"
	"campus-assets-api/internal/logger"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	srv := internal.NewServer(cfg.DBDSN, cfg, log)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting campus assets API server",
		"port", cfg.Port,
		"jwt_issuer", cfg.JWTIssuer,
		"jwt_audience", cfg.JWTAudience,
		"jwt_expiry", cfg.JWTExpiry,
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-done
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := srv.Close(ctx); err != nil {
		log.Error("closing resources failed", "error", err)
	}
}
