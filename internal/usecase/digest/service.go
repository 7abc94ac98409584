package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/metrics"
	"github.com/kailas-cloud/paperdigest/internal/usecase/filter"
)

// DefaultMaxPapers caps the papers fetched for one digest.
const DefaultMaxPapers = 30

// Send outcomes reported through metrics.
const (
	statusSent   = "sent"
	statusEmpty  = "empty"
	statusFailed = "failed"
)

// CreateRequest describes a new digest config.
type CreateRequest struct {
	Target   string
	Schedule domdigest.Schedule
	SendHour int
	Keywords []string
}

// SendResult reports one digest send.
type SendResult struct {
	Papers int
	Sent   bool
}

// Service manages digest configs and sends digests.
type Service struct {
	repo       Repository
	source     Source
	summarizer Summarizer
	mailer     domain.Mailer
	categories []string
	maxPapers  int
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a digest service. A nil summarizer sends digests without summaries.
func New(
	repo Repository, source Source, summarizer Summarizer, mailer domain.Mailer,
	categories []string, logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		source:     source,
		summarizer: summarizer,
		mailer:     mailer,
		categories: categories,
		maxPapers:  DefaultMaxPapers,
		now:        time.Now,
		logger:     logger,
	}
}

// WithMaxPapers overrides how many papers one digest may carry.
func (s *Service) WithMaxPapers(n int) *Service {
	if n > 0 {
		s.maxPapers = n
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates and stores a digest config.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domdigest.Config, error) {
	cfg, err := domdigest.New(req.Target, req.Schedule, req.SendHour, req.Keywords)
	if err != nil {
		return domdigest.Config{}, fmt.Errorf("validate digest: %w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return domdigest.Config{}, fmt.Errorf("create digest: %w", err)
	}
	return cfg, nil
}

// List returns all digest configs.
func (s *Service) List(ctx context.Context) ([]domdigest.Config, error) {
	cfgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	return cfgs, nil
}

// Delete removes a digest config.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete digest: %w", err)
	}
	return nil
}

// SendNow sends the digest immediately, ignoring its schedule.
func (s *Service) SendNow(ctx context.Context, id string) (SendResult, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return SendResult{}, fmt.Errorf("get digest: %w", err)
	}
	return s.send(ctx, cfg)
}

// CheckAndSend sends every enabled digest that is due and returns how many went out.
// A failing digest is logged and does not stop the others.
func (s *Service) CheckAndSend(ctx context.Context) (int, error) {
	cfgs, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list enabled digests: %w", err)
	}

	now := s.now()
	sent := 0
	for _, cfg := range cfgs {
		if !cfg.Due(now) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		res, err := s.send(ctx, cfg)
		if err != nil {
			s.logger.Error("Digest send failed",
				zap.String("digest_id", cfg.ID()),
				zap.String("target", cfg.Target()),
				zap.Error(err),
			)
			continue
		}
		if res.Sent {
			sent++
		}
	}
	return sent, nil
}

func (s *Service) send(ctx context.Context, cfg domdigest.Config) (SendResult, error) {
	now := s.now().UTC()

	papers, err := s.source.FetchRecent(ctx, s.categories, s.lookback(cfg, now), s.maxPapers)
	if err != nil {
		metrics.DigestsSentTotal.WithLabelValues(statusFailed).Inc()
		return SendResult{}, fmt.Errorf("fetch papers: %w", err)
	}

	papers = filter.NewMatcher(cfg.Keywords(), filter.Fuzzy).Filter(papers)
	if len(papers) > s.maxPapers {
		papers = papers[:s.maxPapers]
	}
	if len(papers) == 0 {
		metrics.DigestsSentTotal.WithLabelValues(statusEmpty).Inc()
		s.logger.Info("No papers for digest", zap.String("digest_id", cfg.ID()))
		return SendResult{}, nil
	}

	papers = s.summarize(ctx, papers)

	msg, err := Compose(cfg.Target(), papers, now)
	if err != nil {
		metrics.DigestsSentTotal.WithLabelValues(statusFailed).Inc()
		return SendResult{}, err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.DigestsSentTotal.WithLabelValues(statusFailed).Inc()
		return SendResult{}, fmt.Errorf("send digest: %w", err)
	}
	metrics.DigestsSentTotal.WithLabelValues(statusSent).Inc()

	if err := s.repo.MarkSent(ctx, cfg.ID(), now); err != nil {
		return SendResult{Papers: len(papers), Sent: true}, fmt.Errorf("mark digest sent: %w", err)
	}

	s.logger.Info("Digest sent",
		zap.String("digest_id", cfg.ID()),
		zap.String("target", cfg.Target()),
		zap.Int("papers", len(papers)),
	)
	return SendResult{Papers: len(papers), Sent: true}, nil
}

// summarize returns the papers with whatever summaries could be generated.
func (s *Service) summarize(ctx context.Context, papers []paper.Paper) []paper.Paper {
	if s.summarizer == nil {
		return papers
	}
	out, err := s.summarizer.SummarizeBatch(ctx, papers)
	if err != nil {
		level := s.logger.Warn
		if !errors.Is(err, domain.ErrSummaryQuotaExceeded) {
			level = s.logger.Error
		}
		level("Digest summaries incomplete", zap.Error(err))
	}
	if len(out) != len(papers) {
		return papers
	}
	return out
}

// lookback picks the oldest submission date a digest covers.
func (s *Service) lookback(cfg domdigest.Config, now time.Time) time.Time {
	if !cfg.LastSent().IsZero() {
		return cfg.LastSent()
	}
	if cfg.Schedule() == domdigest.Weekly {
		return now.Add(-7 * 24 * time.Hour)
	}
	return now.Add(-24 * time.Hour)
}
