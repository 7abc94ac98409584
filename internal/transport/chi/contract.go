package chi

import (
	"context"
	"io"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domcol "github.com/kailas-cloud/paperdigest/internal/domain/collection"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
	"github.com/kailas-cloud/paperdigest/internal/domain/provider"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
	domusage "github.com/kailas-cloud/paperdigest/internal/domain/usage"
	collectionuc "github.com/kailas-cloud/paperdigest/internal/usecase/collection"
	digestuc "github.com/kailas-cloud/paperdigest/internal/usecase/digest"
	exportuc "github.com/kailas-cloud/paperdigest/internal/usecase/export"
	fetchuc "github.com/kailas-cloud/paperdigest/internal/usecase/fetch"
	healthuc "github.com/kailas-cloud/paperdigest/internal/usecase/health"
	paperuc "github.com/kailas-cloud/paperdigest/internal/usecase/paper"
	similaruc "github.com/kailas-cloud/paperdigest/internal/usecase/similar"
)

// PaperService reads and votes on stored papers and searches arXiv live.
type PaperService interface {
	List(ctx context.Context, q dompaper.ListQuery) (paperuc.Page, error)
	Get(ctx context.Context, id string) (dompaper.Paper, error)
	Vote(ctx context.Context, id, direction string) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
	Search(ctx context.Context, query string, count int, summarize bool) ([]dompaper.Paper, error)
}

// SimilarService ranks stored papers against one of them.
type SimilarService interface {
	Similar(ctx context.Context, id string, k int) ([]similaruc.Match, error)
}

// FetchService runs the fetch pipeline.
type FetchService interface {
	Run(ctx context.Context, opts fetchuc.Options) (fetchuc.Result, error)
}

// SubscriptionService manages keyword subscriptions.
type SubscriptionService interface {
	Add(ctx context.Context, keyword string) (domsub.Subscription, bool, error)
	Remove(ctx context.Context, keyword string) error
	List(ctx context.Context) ([]domsub.Subscription, error)
}

// CollectionService manages bookmark collections.
type CollectionService interface {
	Create(ctx context.Context, name, description string) (domcol.Collection, error)
	Get(ctx context.Context, id string) (collectionuc.Detail, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, id string) error
	AddPaper(ctx context.Context, id, paperID string) error
	RemovePaper(ctx context.Context, id, paperID string) error
}

// DigestService manages e-mail digests.
type DigestService interface {
	Create(ctx context.Context, req digestuc.CreateRequest) (domdigest.Config, error)
	List(ctx context.Context) ([]domdigest.Config, error)
	Delete(ctx context.Context, id string) error
	SendNow(ctx context.Context, id string) (digestuc.SendResult, error)
}

// ExportService streams stored papers in a file format.
type ExportService interface {
	Export(ctx context.Context, w io.Writer, req exportuc.Request) (int, error)
}

// UsageService reports the summary token budget.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// ProviderLister lists the configured LLM providers.
type ProviderLister interface {
	Providers() []provider.Status
}

// Services bundles the use cases the API serves. A nil digest or fetch service disables its routes.
type Services struct {
	Papers        PaperService
	Similar       SimilarService
	Fetch         FetchService
	Subscriptions SubscriptionService
	Collections   CollectionService
	Digests       DigestService
	Export        ExportService
	Usage         UsageService
	Health        HealthService
	Providers     ProviderLister
}
