package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coworklabs/perks/internal/clock"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log       *zap.Logger
	RewardSvc rewarddomain.Service
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

// Scheduler drives the recurring settlement pass. It owns no business
// logic; each tick it invokes the reward service once.
type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	rewardSvc rewarddomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.RewardSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		rewardSvc: p.RewardSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	runID := uuid.NewString()
	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", runID),
	)
	start := time.Now()
	log.Info("job started")

	err := fn(ctx)
	if err == nil {
		log.Info("job finished", zap.Duration("took", time.Since(start)))
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	log.Error("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes a single settlement pass.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, "process_due_rewards", func(ctx context.Context) error {
		return s.rewardSvc.ProcessDue(ctx)
	})
}

// RunForever loops RunOnce on the configured interval until ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
