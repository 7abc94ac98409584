package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/db"
	"github.com/kailas-cloud/paperdigest/internal/supervisor"
	chiTransport "github.com/kailas-cloud/paperdigest/internal/transport/chi"
	digestuc "github.com/kailas-cloud/paperdigest/internal/usecase/digest"
	"github.com/kailas-cloud/paperdigest/internal/version"
)

const kvPurgeInterval = time.Hour

func runServe(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", a.cfg.HTTP.Port, "HTTP port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := a.cfg
	a.logger.Info("Starting paperdigest API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", *port),
		zap.String("db_path", cfg.Database.Path),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("summaries", a.summaries != nil),
		zap.Bool("digests", a.digests != nil),
	)

	server := chiTransport.NewServer(a.services(), a.logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:           cfg.Auth.APIKeys,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		Logger:            a.logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	shutdown := time.Duration(cfg.HTTP.ShutdownSec) * time.Second

	tree := supervisor.New(supervisor.Config{ShutdownTimeout: shutdown}, a.logger)
	tree.Add(supervisor.NewHTTPService(srv, shutdown))
	if a.digests != nil {
		interval := time.Duration(cfg.Digest.CheckIntervalSec) * time.Second
		tree.Add(digestuc.NewScheduler(a.digests, interval, a.logger))
	}
	if !cfg.Cache.Enabled {
		tree.Add(&kvJanitor{store: a.sqlKV, interval: kvPurgeInterval, logger: a.logger})
	}

	err := tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}

// kvJanitor drops expired rows from the SQLite kv table.
type kvJanitor struct {
	store    db.Purger
	interval time.Duration
	logger   *zap.Logger
}

func (j *kvJanitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := j.store.PurgeExpired(ctx)
			if err != nil {
				j.logger.Warn("Failed to purge expired keys", zap.Error(err))
				continue
			}
			if n > 0 {
				j.logger.Debug("Purged expired keys", zap.Int64("rows", n))
			}
		}
	}
}

func (j *kvJanitor) String() string { return "kv-janitor" }
