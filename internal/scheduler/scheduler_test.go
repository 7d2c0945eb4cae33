package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/clock"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rewardServiceStub struct {
	calls int
	err   error
	block bool
}

func (s *rewardServiceStub) CreateForConversion(ctx context.Context, referral *referraldomain.Referral) ([]rewarddomain.Reward, error) {
	return nil, nil
}

func (s *rewardServiceStub) ProcessDue(ctx context.Context) error {
	s.calls++
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *rewardServiceStub) VoidFuture(ctx context.Context, referralID snowflake.ID) error {
	return nil
}

func (s *rewardServiceStub) ListByReferral(ctx context.Context, referralID snowflake.ID) ([]rewarddomain.Reward, error) {
	return nil, nil
}

func newTestScheduler(t *testing.T, stub *rewardServiceStub, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(Params{
		Log:       zap.NewNop(),
		RewardSvc: stub,
		Clock:     clock.NewFakeClock(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		Config:    cfg,
	})
	require.NoError(t, err)
	return s
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceInvokesSettlement(t *testing.T) {
	stub := &rewardServiceStub{}
	s := newTestScheduler(t, stub, Config{})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.calls)
}

func TestRunOncePropagatesJobError(t *testing.T) {
	stub := &rewardServiceStub{err: errors.New("query due rewards: connection refused")}
	s := newTestScheduler(t, stub, Config{})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "process_due_rewards")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRunOnceSwallowsTimeout(t *testing.T) {
	stub := &rewardServiceStub{block: true}
	s := newTestScheduler(t, stub, Config{JobTimeout: 10 * time.Millisecond})

	// A run that overruns its timeout is logged, not treated as a failure.
	assert.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.calls)
}

func TestRunForeverStopsOnContextCancel(t *testing.T) {
	stub := &rewardServiceStub{}
	s := newTestScheduler(t, stub, Config{RunInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunForever(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, stub.calls, 1)
}
