package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/rentflow/internal/clock"
	"github.com/smallbiznis/rentflow/internal/config"
	obsmetrics "github.com/smallbiznis/rentflow/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	BillingCfg *config.BillingConfigHolder
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

// Scheduler periodically re-classifies unpaid charges whose due date
// has passed. Charge status is otherwise a pure function of balance;
// overdue is the one transition driven by the clock, so it lives here
// rather than in the allocation engine.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	billingCfg *config.BillingConfigHolder
	metrics    *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.BillingCfg == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:      p.Clock,
		billingCfg: p.BillingCfg,
		metrics:    p.Metrics,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.billingCfg.Get().SweepInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("overdue sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Pick up hot-reloaded interval changes between runs.
		if next := s.billingCfg.Get().SweepInterval; next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}

// RunOnce marks one batch of past-due unpaid charges overdue.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cfg := s.billingCfg.Get()
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -cfg.OverdueGraceDays)

	swept, err := s.sweepOverdue(ctx, cutoff, now, cfg.SweepBatchSize)
	if err != nil {
		return err
	}

	if swept > 0 {
		s.metrics.RecordOverdueSwept(swept)
		s.log.Info("charges marked overdue",
			zap.Int64("count", swept),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

func (s *Scheduler) sweepOverdue(ctx context.Context, cutoff, now time.Time, batchSize int) (int64, error) {
	// The derived table keeps the LIMIT-ed subselect legal on mysql.
	res := s.db.WithContext(ctx).Exec(
		`UPDATE monthly_charges
		 SET status = 'overdue', updated_at = ?
		 WHERE id IN (
			SELECT id FROM (
				SELECT id FROM monthly_charges
				WHERE balance_due > 0
				  AND status IN ('pending', 'partial')
				  AND due_date < ?
				LIMIT ?
			) AS past_due
		 )`,
		now,
		cutoff,
		batchSize,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
