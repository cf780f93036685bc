package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
)

// DigestSource builds the daily operations digest.
type DigestSource interface {
	DailyDigest(ctx context.Context) (domain.DailyDigest, error)
}

// Scheduler runs the daily digest job and keeps the most recent result.
type Scheduler struct {
	cron     *cron.Cron
	source   DigestSource
	schedule string
	timeout  time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	latest *domain.DailyDigest
}

func New(source DigestSource, schedule string, location *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		source:   source,
		schedule: schedule,
		timeout:  2 * time.Minute,
		logger:   logger,
	}
}

// Start registers the digest job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunNow builds a digest immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (domain.DailyDigest, error) {
	digest, err := s.source.DailyDigest(ctx)
	if err != nil {
		return domain.DailyDigest{}, err
	}

	s.mu.Lock()
	s.latest = &digest
	s.mu.Unlock()

	return digest, nil
}

// Latest returns the last digest built, if any.
func (s *Scheduler) Latest() (domain.DailyDigest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.DailyDigest{}, false
	}
	return *s.latest, true
}

func (s *Scheduler) runDigest() {
	s.logger.Info("generating daily digest")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	digest, err := s.RunNow(ctx)
	if err != nil {
		s.logger.Error("failed to generate daily digest", zap.Error(err))
		return
	}

	s.logger.Info("daily digest",
		zap.String("date", digest.Date),
		zap.Int("overdue_sales", len(digest.OverdueSales)),
		zap.Float64("overdue_total", digest.OverdueTotal),
		zap.Float64("hamali_pending", digest.HamaliPending),
		zap.Int("open_centers", digest.OpenCenters),
		zap.Float64("unreconciled_total", digest.UnreconciledTotal),
	)
	for _, sale := range digest.OverdueSales {
		s.logger.Warn("overdue by-product sale",
			zap.String("invoice_no", sale.InvoiceNo),
			zap.String("party_name", sale.PartyName),
			zap.Float64("balance", sale.Balance),
			zap.Int("days_overdue", sale.DaysOverdue),
		)
	}
}
