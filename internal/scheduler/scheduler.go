// Package scheduler runs the periodic maintenance jobs that keep derived
// state honest between writes. Statuses are recomputed on every mutation,
// but a batch can cross its expiry date while nobody touches it; the expiry
// sweep catches those.
package scheduler

import (
	"context"
	"fmt"
	"time"

	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSweepInterval = time.Hour

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Audit    auditdomain.Service
	Notifier notificationdomain.Service
}

type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	audit    auditdomain.Service
	notifier notificationdomain.Service
	interval time.Duration
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler"),
		clock:    p.Clock,
		audit:    p.Audit,
		notifier: p.Notifier,
		interval: defaultSweepInterval,
	}
}

// RunExpirySweep marks every batch whose expiry date has passed and alerts
// on each one it flips. Returns how many rows changed.
func (s *Scheduler) RunExpirySweep(ctx context.Context) (int64, error) {
	now := s.clock.Now()

	var stale []medicinedomain.Medicine
	err := s.db.WithContext(ctx).
		Where("is_deleted = ? AND status <> ? AND expiry_date < ?", false, medicinedomain.StatusExpired, now).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Exec(`
		UPDATE medicines
		SET status = ?, updated_at = ?
		WHERE is_deleted = ? AND status <> ? AND expiry_date < ?
	`, medicinedomain.StatusExpired, now, false, medicinedomain.StatusExpired, now)
	if res.Error != nil {
		return 0, res.Error
	}

	for i := range stale {
		s.notifier.StockAlert(ctx, stale[i].BrandName, stale[i].BatchNumber, string(medicinedomain.StatusExpired))
		s.audit.Record(ctx, auditdomain.ActionEdit,
			fmt.Sprintf("Marked %s (batch %s) as expired", stale[i].BrandName, stale[i].BatchNumber))
	}
	s.log.Info("expiry sweep flagged batches", zap.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunExpirySweep(ctx); err != nil {
				s.log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.run(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)
