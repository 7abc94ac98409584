package subscription

import (
	"context"

	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

// Repository stores keyword subscriptions.
type Repository interface {
	Add(ctx context.Context, s domsub.Subscription) error
	Remove(ctx context.Context, keyword string) error
	List(ctx context.Context) ([]domsub.Subscription, error)
}
