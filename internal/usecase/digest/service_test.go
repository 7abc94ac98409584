package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	"github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

// --- Mocks ---

type mockRepo struct {
	mu        sync.Mutex
	configs   []domdigest.Config
	created   []domdigest.Config
	marked    map[string]time.Time
	getErr    error
	markErr   error
	deleteErr error
}

func (m *mockRepo) Create(_ context.Context, c domdigest.Config) error {
	m.created = append(m.created, c)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domdigest.Config, error) {
	if m.getErr != nil {
		return domdigest.Config{}, m.getErr
	}
	for _, c := range m.configs {
		if c.ID() == id {
			return c, nil
		}
	}
	return domdigest.Config{}, domain.ErrNotFound
}

func (m *mockRepo) List(context.Context) ([]domdigest.Config, error) { return m.configs, nil }

func (m *mockRepo) ListEnabled(context.Context) ([]domdigest.Config, error) {
	var out []domdigest.Config
	for _, c := range m.configs {
		if c.Enabled() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(context.Context, string) error { return m.deleteErr }

func (m *mockRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marked == nil {
		m.marked = map[string]time.Time{}
	}
	m.marked[id] = at
	return m.markErr
}

type mockSource struct {
	fetchFn func(ctx context.Context, cats []string, since time.Time, limit int) ([]paper.Paper, error)
}

func (m *mockSource) FetchRecent(ctx context.Context, cats []string, since time.Time, limit int) ([]paper.Paper, error) {
	return m.fetchFn(ctx, cats, since, limit)
}

type mockSummarizer struct {
	batchFn func(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error)
}

func (m *mockSummarizer) SummarizeBatch(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error) {
	return m.batchFn(ctx, papers)
}

type mockMailer struct {
	sent []domain.Email
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg domain.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// --- Helpers ---

var now = time.Date(2024, 6, 3, 9, 10, 0, 0, time.UTC)

func mkPaper(t *testing.T, id, title string) paper.Paper {
	t.Helper()
	p, err := paper.New(paper.Fields{
		ID:         id,
		Title:      title,
		Abstract:   "abstract of " + title,
		Authors:    []string{"Ada", "Bob", "Cy", "Di"},
		Categories: []string{"cs.LG", "cs.AI", "cs.CL", "stat.ML"},
		URL:        "https://arxiv.org/abs/" + id,
		PDFURL:     "https://arxiv.org/pdf/" + id,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func staticSource(papers ...paper.Paper) *mockSource {
	return &mockSource{fetchFn: func(context.Context, []string, time.Time, int) ([]paper.Paper, error) {
		return papers, nil
	}}
}

func newService(repo Repository, src Source, sum Summarizer, mailer domain.Mailer) *Service {
	return New(repo, src, sum, mailer, []string{"cs.LG"}, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo, nil, nil, &mockMailer{})

	cfg, err := svc.Create(context.Background(), CreateRequest{Target: "me@example.com", SendHour: 9})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schedule() != domdigest.Daily || len(repo.created) != 1 {
		t.Errorf("cfg = %+v", cfg)
	}

	_, err = svc.Create(context.Background(), CreateRequest{Target: "not-an-address"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendNow(t *testing.T) {
	cfg := domdigest.Reconstruct("d1", "me@example.com", domdigest.Daily, 3, []string{"graph"}, true, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{cfg}}
	mailer := &mockMailer{}
	src := staticSource(mkPaper(t, "1", "Graph transformers"), mkPaper(t, "2", "Protein folding"))

	res, err := newService(repo, src, nil, mailer).SendNow(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Sent || res.Papers != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "me@example.com" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
	if strings.Contains(mailer.sent[0].Plain, "Protein") {
		t.Error("keyword filter not applied")
	}
	if !repo.marked["d1"].Equal(now) {
		t.Errorf("marked = %v", repo.marked)
	}
}

func TestSendNow_Unknown(t *testing.T) {
	_, err := newService(&mockRepo{}, nil, nil, &mockMailer{}).SendNow(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSend_NoPapers(t *testing.T) {
	cfg := domdigest.Reconstruct("d1", "me@example.com", domdigest.Daily, 9, nil, true, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{cfg}}
	mailer := &mockMailer{}

	res, err := newService(repo, staticSource(), nil, mailer).SendNow(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent || len(mailer.sent) != 0 || len(repo.marked) != 0 {
		t.Errorf("empty digest must not be sent: %+v", res)
	}
}

func TestSend_MailFailureKeepsLastSent(t *testing.T) {
	cfg := domdigest.Reconstruct("d1", "me@example.com", domdigest.Daily, 9, nil, true, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{cfg}}
	mailer := &mockMailer{err: errors.New("relay down")}

	_, err := newService(repo, staticSource(mkPaper(t, "1", "A")), nil, mailer).SendNow(context.Background(), "d1")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.marked) != 0 {
		t.Error("last_sent must not advance on failure")
	}
}

func TestSend_QuotaStillSends(t *testing.T) {
	cfg := domdigest.Reconstruct("d1", "me@example.com", domdigest.Daily, 9, nil, true, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{cfg}}
	mailer := &mockMailer{}
	sum := &mockSummarizer{batchFn: func(_ context.Context, ps []paper.Paper) ([]paper.Paper, error) {
		out := append([]paper.Paper(nil), ps...)
		out[0] = out[0].WithSummary("first only")
		return out, domain.ErrSummaryQuotaExceeded
	}}

	res, err := newService(repo, staticSource(mkPaper(t, "1", "A"), mkPaper(t, "2", "B")), sum, mailer).
		SendNow(context.Background(), "d1")
	if err != nil || !res.Sent {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if !strings.Contains(mailer.sent[0].Plain, "first only") {
		t.Error("partial summaries should be kept")
	}
}

func TestSend_LookbackAndLimit(t *testing.T) {
	lastSent := now.Add(-30 * time.Hour)
	tests := []struct {
		name      string
		cfg       domdigest.Config
		wantSince time.Time
	}{
		{"daily never sent", domdigest.Reconstruct("d", "a@b.c", domdigest.Daily, 9, nil, true, time.Time{}), now.Add(-24 * time.Hour)},
		{"weekly never sent", domdigest.Reconstruct("d", "a@b.c", domdigest.Weekly, 9, nil, true, time.Time{}), now.Add(-7 * 24 * time.Hour)},
		{"previously sent", domdigest.Reconstruct("d", "a@b.c", domdigest.Daily, 9, nil, true, lastSent), lastSent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSince time.Time
			var gotMax int
			src := &mockSource{fetchFn: func(_ context.Context, _ []string, since time.Time, limit int) ([]paper.Paper, error) {
				gotSince, gotMax = since, limit
				return []paper.Paper{mkPaper(t, "1", "A"), mkPaper(t, "2", "B"), mkPaper(t, "3", "C")}, nil
			}}
			mailer := &mockMailer{}
			repo := &mockRepo{configs: []domdigest.Config{tt.cfg}}
			res, err := newService(repo, src, nil, mailer).WithMaxPapers(2).SendNow(context.Background(), "d")
			if err != nil {
				t.Fatal(err)
			}
			if !gotSince.Equal(tt.wantSince) || gotMax != 2 || res.Papers != 2 {
				t.Errorf("since=%v max=%d papers=%d", gotSince, gotMax, res.Papers)
			}
		})
	}
}

func TestCheckAndSend(t *testing.T) {
	due := domdigest.Reconstruct("due", "a@example.com", domdigest.Daily, 9, nil, true, time.Time{})
	recent := domdigest.Reconstruct("recent", "b@example.com", domdigest.Daily, 9, nil, true, now.Add(-2*time.Hour))
	wrongHour := domdigest.Reconstruct("hour", "c@example.com", domdigest.Daily, 15, nil, true, time.Time{})
	disabled := domdigest.Reconstruct("off", "d@example.com", domdigest.Daily, 9, nil, false, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{due, recent, wrongHour, disabled}}
	mailer := &mockMailer{}

	sent, err := newService(repo, staticSource(mkPaper(t, "1", "A")), nil, mailer).CheckAndSend(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 1 || len(mailer.sent) != 1 || mailer.sent[0].To != "a@example.com" {
		t.Errorf("sent=%d mails=%+v", sent, mailer.sent)
	}
}

func TestCheckAndSend_FailureDoesNotStopOthers(t *testing.T) {
	a := domdigest.Reconstruct("a", "a@example.com", domdigest.Daily, 9, nil, true, time.Time{})
	b := domdigest.Reconstruct("b", "b@example.com", domdigest.Daily, 9, []string{"graph"}, true, time.Time{})
	repo := &mockRepo{configs: []domdigest.Config{a, b}}
	calls := 0
	src := &mockSource{fetchFn: func(context.Context, []string, time.Time, int) ([]paper.Paper, error) {
		calls++
		if calls == 1 {
			return nil, domain.ErrUpstreamUnavailable
		}
		return []paper.Paper{mkPaper(t, "1", "Graph nets")}, nil
	}}
	mailer := &mockMailer{}

	sent, err := newService(repo, src, nil, mailer).CheckAndSend(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 1 || mailer.sent[0].To != "b@example.com" {
		t.Errorf("sent=%d mails=%+v", sent, mailer.sent)
	}
}
