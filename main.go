// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/roundvote/cliparse"
	"github.com/danielhkuo/roundvote/db"
	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/router"
	"github.com/danielhkuo/roundvote/session"
	"github.com/danielhkuo/roundvote/timing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := notify.NewFeed(cfg.FeedSize)
	sinks := []notify.Sink{notify.NewLogSink(logger), feed}

	// The journal is optional
	var journal *db.Journal
	if cfg.JournalEnabled() {
		conn, err := openJournal(ctx, cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		journal = db.NewJournal(conn)
		sinks = append(sinks, notify.NewJournalSink(journal))
	}

	dispatcher := notify.NewDispatcher(cfg.QueueSize, logger, sinks...)
	registry := session.NewRegistry(ctx, session.RegistryConfig{
		Policies:  cfg.Policies(),
		Clock:     timing.RealClock{},
		Publisher: dispatcher,
		Logger:    logger,
	})

	mux := router.NewRouter(router.Deps{
		Registry: registry,
		Feed:     feed,
		Journal:  journal,
		Config:   cfg,
	})

	server := &http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Sessions stop before the dispatcher so their last notifications are
	// flushed to the sinks
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		if cerr := registry.Close(); cerr != nil && err == nil {
			err = cerr
		}
		stopDispatch()
		slog.Info("Server closed")
		return err
	})

	return g.Wait()
}

func openJournal(ctx context.Context, cfg cliparse.Config) (*sql.DB, error) {
	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Create schema (tables)
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("Journal ready", "type", cfg.DatabaseType)
	return conn, nil
}
