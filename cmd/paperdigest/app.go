package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/config"
	"github.com/kailas-cloud/paperdigest/internal/db"
	dbRedis "github.com/kailas-cloud/paperdigest/internal/db/redis"
	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	"github.com/kailas-cloud/paperdigest/internal/domain/provider"
	logpkg "github.com/kailas-cloud/paperdigest/internal/logger"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
	budgetrepo "github.com/kailas-cloud/paperdigest/internal/repository/budget"
	collectionrepo "github.com/kailas-cloud/paperdigest/internal/repository/collection"
	digestrepo "github.com/kailas-cloud/paperdigest/internal/repository/digest"
	metarepo "github.com/kailas-cloud/paperdigest/internal/repository/meta"
	paperrepo "github.com/kailas-cloud/paperdigest/internal/repository/paper"
	subscriptionrepo "github.com/kailas-cloud/paperdigest/internal/repository/subscription"
	"github.com/kailas-cloud/paperdigest/internal/repository/summarycache"
	"github.com/kailas-cloud/paperdigest/internal/transport/anthropic"
	"github.com/kailas-cloud/paperdigest/internal/transport/arxiv"
	chiTransport "github.com/kailas-cloud/paperdigest/internal/transport/chi"
	"github.com/kailas-cloud/paperdigest/internal/transport/huggingface"
	"github.com/kailas-cloud/paperdigest/internal/transport/ollama"
	openaiSum "github.com/kailas-cloud/paperdigest/internal/transport/openai"
	"github.com/kailas-cloud/paperdigest/internal/transport/smtp"
	collectionuc "github.com/kailas-cloud/paperdigest/internal/usecase/collection"
	digestuc "github.com/kailas-cloud/paperdigest/internal/usecase/digest"
	exportuc "github.com/kailas-cloud/paperdigest/internal/usecase/export"
	fetchuc "github.com/kailas-cloud/paperdigest/internal/usecase/fetch"
	healthuc "github.com/kailas-cloud/paperdigest/internal/usecase/health"
	paperuc "github.com/kailas-cloud/paperdigest/internal/usecase/paper"
	similaruc "github.com/kailas-cloud/paperdigest/internal/usecase/similar"
	subscriptionuc "github.com/kailas-cloud/paperdigest/internal/usecase/subscription"
	summaryuc "github.com/kailas-cloud/paperdigest/internal/usecase/summary"
	usageuc "github.com/kailas-cloud/paperdigest/internal/usecase/usage"
	"github.com/kailas-cloud/paperdigest/internal/version"
)

const systemInstruction = "You are a helpful AI research assistant that generates concise summaries."

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	conn  *sql.DB
	sqlKV *sqlite.Store
	kv    db.Store

	arxiv     *arxiv.Client
	provider  config.ResolvedProvider
	budget    *summaryuc.BudgetTracker
	base      domain.Summarizer
	summaries *summaryuc.Service

	papers        *paperuc.Service
	similar       *similaruc.Service
	fetch         *fetchuc.Service
	subscriptions *subscriptionuc.Service
	collections   *collectionuc.Service
	digests       *digestuc.Service
	export        *exportuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
}

// appOptions select per-command startup behavior.
type appOptions struct {
	// migrate brings the schema up to date before wiring.
	migrate bool
	// quiet drops info logs unless a level is configured, keeping CLI output readable.
	quiet bool
}

// newApp loads configuration and wires every service.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if level == "" && opts.quiet {
		level = "warn"
	}
	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: level, Version: version.Version})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.openStorage(ctx, opts.migrate); err != nil {
		a.Close()
		return nil, err
	}

	metrics.RegisterSummaryMetrics()
	metrics.RegisterArxivMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	a.arxiv = arxiv.NewClient(&arxiv.Config{
		BaseURL:         cfg.Arxiv.BaseURL,
		RateLimit:       cfg.Arxiv.RequestInterval(),
		MaxRetries:      cfg.Arxiv.MaxRetries,
		Timeout:         time.Duration(cfg.Arxiv.TimeoutSec) * time.Second,
		BreakerFailures: cfg.Arxiv.BreakerFailures,
		BreakerTimeout:  time.Duration(cfg.Arxiv.BreakerTimeoutSec) * time.Second,
		UserAgent:       version.UserAgent(),
		Logger:          logger,
	})

	if err := a.buildSummarizer(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.buildServices()
	return a, nil
}

func (a *app) openStorage(ctx context.Context, migrate bool) error {
	conn, err := sqlite.Open(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.conn = conn
	a.sqlKV = sqlite.NewStore(conn)

	if err := a.sqlKV.WaitForReady(ctx, time.Duration(a.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if migrate {
		if err := (sqlite.Manager{}).UpToLatest(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	a.kv = a.sqlKV
	if !a.cfg.Cache.Enabled {
		return nil
	}

	rs, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Cache.Addrs,
		Username: a.cfg.Cache.Username,
		Password: a.cfg.Cache.Password,
		DB:       a.cfg.Cache.DB,

		Namespace:      a.cfg.Cache.Namespace,
		ClientCacheTTL: time.Duration(a.cfg.Cache.ClientCacheSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	if err := rs.WaitForReady(ctx, time.Duration(a.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		rs.Close()
		return fmt.Errorf("cache not ready: %w", err)
	}
	a.kv = rs
	a.logger.Info("Connected to cache", zap.Strings("addrs", a.cfg.Cache.Addrs))
	return nil
}

// buildSummarizer assembles the decorator chain: provider -> cached -> instrumented -> batch service.
func (a *app) buildSummarizer(ctx context.Context) error {
	sc := a.cfg.Summary
	if !sc.Enabled {
		return nil
	}

	resolved, err := sc.Active()
	if err != nil {
		return err
	}
	a.provider = resolved

	budgetCfg := sc.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := summaryuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = summaryuc.BudgetActionReject
		}
		a.budget = summaryuc.NewBudgetTracker(
			resolved.Name, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, a.logger,
		).WithStore(ctx, budgetrepo.New(a.kv, 0, 0))
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker summaryuc.BudgetChecker
	if a.budget != nil {
		budgetChecker = a.budget
	}

	a.base = newProviderSummarizer(resolved, sc, a.logger)

	var s domain.Summarizer = a.base
	if resolved.Kind == provider.KindAnthropic || resolved.Kind == provider.KindOllama {
		// These clients send no system message of their own.
		s = domain.NewSystemPromptSummarizer(s, systemInstruction)
	}
	s = summarycache.New(s, a.kv, time.Duration(a.cfg.Cache.SummaryTTLHours)*time.Hour,
		metrics.SummaryCacheTotal, a.logger)
	s = summaryuc.NewInstrumentedSummarizer(s, resolved.Name, resolved.Model, budgetChecker, a.logger)

	a.summaries = summaryuc.New(s, a.logger).WithMaxConcurrent(sc.MaxConcurrent)

	a.logger.Info("Summarizer created",
		zap.String("provider", resolved.Name),
		zap.String("kind", string(resolved.Kind)),
		zap.String("model", resolved.Model),
	)
	return nil
}

func newProviderSummarizer(p config.ResolvedProvider, sc config.SummaryConfig, logger *zap.Logger) domain.Summarizer {
	switch p.Kind {
	case provider.KindAnthropic:
		return anthropic.NewSummarizer(&anthropic.Config{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			MaxTokens:   sc.MaxTokens,
			Temperature: sc.Temperature,
			Logger:      logger,
		})
	case provider.KindOllama:
		return ollama.NewSummarizer(&ollama.Config{
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			MaxTokens:   sc.MaxTokens,
			Temperature: sc.Temperature,
			Logger:      logger,
		})
	case provider.KindHuggingFace:
		return huggingface.NewSummarizer(&huggingface.Config{
			APIKey:    p.APIKey,
			BaseURL:   p.BaseURL,
			Model:     p.Model,
			MaxLength: sc.MaxTokens,
			Logger:    logger,
		})
	default:
		return openaiSum.NewSummarizer(&openaiSum.Config{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			MaxTokens:   sc.MaxTokens,
			Temperature: sc.Temperature,
			Provider:    p.Name,
			Logger:      logger,
		})
	}
}

func (a *app) buildServices() {
	papers := paperrepo.New(a.conn)
	subs := subscriptionrepo.New(a.conn)
	meta := metarepo.New(a.conn)

	// Nil interface when summaries are disabled.
	var batch fetchuc.Summarizer
	if a.summaries != nil {
		batch = a.summaries
	}

	a.papers = paperuc.New(papers, meta, a.arxiv, batch, a.logger)
	a.similar = similaruc.New(papers, a.logger).WithMaxCorpus(a.cfg.Similar.MaxCorpus)
	a.fetch = fetchuc.New(a.arxiv, papers, subs, meta, batch, a.cfg.Arxiv.Categories, a.logger).
		WithMaxPerCategory(a.cfg.Arxiv.MaxResults)
	a.subscriptions = subscriptionuc.New(subs)
	a.collections = collectionuc.New(collectionrepo.New(a.conn), papers)
	a.export = exportuc.New(papers)

	if a.cfg.Digest.Enabled {
		smtpCfg := a.cfg.Digest.SMTP
		mailer := smtp.NewMailer(&smtp.Config{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			User:     smtpCfg.User,
			Password: smtpCfg.Password,
			From:     smtpCfg.From,
			Timeout:  time.Duration(smtpCfg.TimeoutSec) * time.Second,
			Logger:   a.logger,
		})
		a.digests = digestuc.New(digestrepo.New(a.conn), a.arxiv, batch, mailer, a.cfg.Arxiv.Categories, a.logger).
			WithMaxPapers(a.cfg.Digest.MaxPapers)
	}

	var budgetReader usageuc.BudgetReader
	if a.budget != nil {
		budgetReader = a.budget
	}
	a.usage = usageuc.New(budgetReader)

	a.health = healthuc.New(a.sqlKV).WithCheck("arxiv", a.arxiv)
	if hc, ok := a.base.(domain.HealthChecker); ok {
		a.health = a.health.WithCheck("summary_provider", hc)
	}
	if a.kv != db.Store(a.sqlKV) {
		a.health = a.health.WithCheck("cache", pingChecker{a.kv})
	}
}

// services bundles the use cases for the HTTP transport.
func (a *app) services() chiTransport.Services {
	svc := chiTransport.Services{
		Papers:        a.papers,
		Similar:       a.similar,
		Fetch:         a.fetch,
		Subscriptions: a.subscriptions,
		Collections:   a.collections,
		Export:        a.export,
		Usage:         a.usage,
		Health:        a.health,
		Providers:     newProviderLister(a.cfg.Summary),
	}
	if a.digests != nil {
		svc.Digests = a.digests
	}
	return svc
}

// Close releases the cache and database connections.
func (a *app) Close() {
	if a.kv != nil && a.kv != db.Store(a.sqlKV) {
		a.kv.Close()
	}
	if a.sqlKV != nil {
		a.sqlKV.Close()
	} else if a.conn != nil {
		_ = a.conn.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// pingChecker adapts a store's Ping to a health check.
type pingChecker struct {
	p db.Pinger
}

func (c pingChecker) HealthCheck(ctx context.Context) error {
	return c.p.Ping(ctx)
}

// providerLister reports every known and configured provider.
type providerLister struct {
	statuses []provider.Status
}

func newProviderLister(sc config.SummaryConfig) providerLister {
	names := provider.Names()
	for name := range sc.Providers {
		if _, known := provider.Lookup(name); !known {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	statuses := make([]provider.Status, 0, len(names))
	for _, name := range names {
		p, err := sc.Resolve(name)
		if err != nil {
			continue
		}
		key := p.APIKey
		if key == "" && p.EnvKey != "" {
			key = os.Getenv(p.EnvKey)
		}
		statuses = append(statuses, provider.NewStatus(p.Info, p.Model, key, sc.Enabled && name == sc.Provider))
	}
	return providerLister{statuses: statuses}
}

func (l providerLister) Providers() []provider.Status {
	return l.statuses
}
