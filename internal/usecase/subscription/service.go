package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/paperdigest/internal/domain"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

// Service manages keyword subscriptions.
type Service struct {
	repo Repository
}

// New creates a subscription service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add subscribes to a keyword. created is false when the keyword was already subscribed.
func (s *Service) Add(ctx context.Context, keyword string) (sub domsub.Subscription, created bool, err error) {
	sub, err = domsub.New(keyword)
	if err != nil {
		return domsub.Subscription{}, false, fmt.Errorf("validate keyword: %w: %w", domain.ErrInvalidInput, err)
	}

	err = s.repo.Add(ctx, sub)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return sub, false, nil
	}
	if err != nil {
		return domsub.Subscription{}, false, fmt.Errorf("add subscription: %w", err)
	}
	return sub, true, nil
}

// Remove unsubscribes from a keyword.
func (s *Service) Remove(ctx context.Context, keyword string) error {
	kw := domsub.Normalize(keyword)
	if kw == "" {
		return domain.NewValidationError("keyword", "is required")
	}
	if err := s.repo.Remove(ctx, kw); err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	return nil
}

// List returns all subscriptions.
func (s *Service) List(ctx context.Context) ([]domsub.Subscription, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
