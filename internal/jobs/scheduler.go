// internal/jobs/scheduler.go
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insurance-solutions/vims-backend/internal/services"
)

// Scheduler runs the daily maintenance pass: expire overdue policies, then
// draft renewal proposals for the ones approaching their end date. Both
// steps are idempotent, so running more often than daily is harmless.
type Scheduler struct {
	renewals *services.RenewalService
	policies *services.PolicyService
	interval time.Duration
}

func NewScheduler(renewals *services.RenewalService, policies *services.PolicyService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		renewals: renewals,
		policies: policies,
		interval: interval,
	}
}

// Start launches the polling loop. It runs one pass immediately, then on
// every tick until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Scheduler stopped")
				return
			case <-ticker.C:
				s.runOnce()
			}
		}
	}()
}

func (s *Scheduler) runOnce() {
	now := time.Now()

	expired, err := s.policies.MarkExpired(now)
	if err != nil {
		logrus.WithError(err).Error("Policy expiry pass failed")
	} else if expired > 0 {
		logrus.WithField("expired", expired).Info("Policies marked expired")
	}

	if _, err := s.renewals.RunSweep(now); err != nil {
		logrus.WithError(err).Error("Renewal sweep failed")
	}
}
