package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/contractiq/contractiq/internal/domain"
	"github.com/contractiq/contractiq/internal/metrics"
)

// LifecycleRepository provides the status transitions the sweeper applies
type LifecycleRepository interface {
	MarkExpired(ctx context.Context, asOf time.Time) (int64, error)
	MarkRenewalDue(ctx context.Context, asOf time.Time, window time.Duration) (int64, error)
}

// LifecycleSweeper recomputes document statuses from expiry dates.
// Documents past expiry become Expired; active documents inside the
// renewal window become Renewal Due. Expiry is checked first so a
// document both past expiry and inside the window ends up Expired.
type LifecycleSweeper struct {
	repo          LifecycleRepository
	renewalWindow time.Duration
	now           func() time.Time
}

// NewLifecycleSweeper creates a sweeper with the given renewal window
func NewLifecycleSweeper(repo LifecycleRepository, renewalWindow time.Duration) *LifecycleSweeper {
	return &LifecycleSweeper{
		repo:          repo,
		renewalWindow: renewalWindow,
		now:           time.Now,
	}
}

// NewLifecycleSweeperWithClock creates a sweeper with a custom clock for testing
func NewLifecycleSweeperWithClock(repo LifecycleRepository, renewalWindow time.Duration, now func() time.Time) *LifecycleSweeper {
	return &LifecycleSweeper{
		repo:          repo,
		renewalWindow: renewalWindow,
		now:           now,
	}
}

// Run applies both transitions once
func (s *LifecycleSweeper) Run(ctx context.Context) error {
	asOf := s.now()

	expired, err := s.repo.MarkExpired(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to mark expired documents: %w", err)
	}
	metrics.RecordLifecycleSweep(string(domain.DocumentStatusExpired), expired)

	renewalDue, err := s.repo.MarkRenewalDue(ctx, asOf, s.renewalWindow)
	if err != nil {
		return fmt.Errorf("failed to mark renewal-due documents: %w", err)
	}
	metrics.RecordLifecycleSweep(string(domain.DocumentStatusRenewalDue), renewalDue)

	return nil
}
