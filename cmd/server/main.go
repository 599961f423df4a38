package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/handlers"
	"portfolio/internal/media"
	"portfolio/internal/resume"
	"portfolio/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: [Main] %v", err)
	}

	dbc, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to open database: %v", err)
	}
	defer dbc.Close()

	log.Println("INFO: [Main] Running database migrations...")
	if err := db.Migrate(dbc); err != nil {
		log.Fatalf("FATAL: [Main] Failed to migrate database: %v", err)
	}

	if err := os.MkdirAll(cfg.Media.Root, 0o755); err != nil {
		log.Fatalf("FATAL: [Main] Media root: %v", err)
	}
	st := store.New(dbc)
	files := media.New(cfg.Media.Root, cfg.Media.URL)
	exporter := &resume.Exporter{Source: st.Profiles, Generator: resume.NewGenerator(files)}
	sessions := auth.NewManager(dbc, cfg.Session.MaxAge, cfg.Session.Secure)

	h := handlers.New(st, sessions, exporter, files, cfg)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("INFO: [Main] Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: [Main] Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("INFO: [Main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: [Main] Shutdown: %v", err)
	}
}
