package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/quickly-pick-live/cliparse"
	"github.com/danielhkuo/quickly-pick-live/coordinator"
	"github.com/danielhkuo/quickly-pick-live/db"
	"github.com/danielhkuo/quickly-pick-live/gateway"
	"github.com/danielhkuo/quickly-pick-live/middleware"
	"github.com/danielhkuo/quickly-pick-live/registry"
	"github.com/danielhkuo/quickly-pick-live/router"
	"github.com/danielhkuo/quickly-pick-live/store"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("Error parsing log level", "error", err)
		os.Exit(1)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
	}

	// The archive lives only as long as the process
	dbConn, err := db.OpenMemory()
	if err != nil {
		slog.Error("archive setup failed", "error", err)
		os.Exit(1)
	}
	archive := store.NewArchive(dbConn)
	defer archive.Close()
	slog.Info("Archive ready")

	hub := gateway.NewHub()
	coord := coordinator.New(store.New(archive), registry.New(), hub, coordinator.Options{
		DefaultTimeLimit: cfg.DefaultTimeLimit,
		MaxTimeLimit:     cfg.MaxTimeLimit,
		Retention:        cfg.Retention,
	})
	defer coord.Close()

	mux := router.NewRouter(coord, gateway.New(hub, coord, cfg.AllowedOrigin))

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port, "origin", cfg.AllowedOrigin)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
