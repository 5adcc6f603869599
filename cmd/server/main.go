package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfoutline/internal/api"
	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/dgallion1/pdfoutline/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence is optional; interfaces stay nil when it is off.
	var (
		st       *store.Client
		records  pipeline.RecordStore
		docStore api.DocumentStore
	)
	if cfg.StoreEnabled() {
		st = store.NewClient(cfg.StoreURL, cfg.StoreAPIKey)
		records, docStore = st, st
	} else {
		log.Warn("STORE_URL not set, records will not be persisted")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, records, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, docStore, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if st != nil {
			st.Close()
		}
	}()

	log.Info("starting pdfoutline", "port", cfg.Port, "workers", cfg.WorkerCount, "store", cfg.StoreEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
