package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/config"
	"github.com/coworklabs/perks/internal/metrics"
	"github.com/coworklabs/perks/internal/providers/banktransfer"
	"github.com/coworklabs/perks/internal/providers/directory"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	"github.com/coworklabs/perks/internal/reward/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tier is one step of the reward schedule, as a share of the referral's
// subscription value due a number of days after conversion.
type tier struct {
	share   float64
	dueDays int
}

// Member referrers earn a single 50% credit immediately; business
// referrers earn a declining 20/10/5 schedule over two months. Tiers stay
// ordered by due date; reward creation relies on that.
var tiersByReferrerType = map[codedomain.OwnerType][]tier{
	codedomain.OwnerTypeMember: {
		{share: 0.50, dueDays: 0},
	},
	codedomain.OwnerTypeBusiness: {
		{share: 0.20, dueDays: 0},
		{share: 0.10, dueDays: 30},
		{share: 0.05, dueDays: 60},
	},
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	Directory    directory.Provider
	BankTransfer banktransfer.Provider
	Clock        clock.Clock
	Cfg          config.Config
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	directory    directory.Provider
	bankTransfer banktransfer.Provider
	clock        clock.Clock
	feeName      string
	feePlanID    string
	metrics      *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reward.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		directory:    p.Directory,
		bankTransfer: p.BankTransfer,
		clock:        p.Clock,
		feeName:      p.Cfg.Directory.FeeName,
		feePlanID:    p.Cfg.Directory.FeePlanID,
		metrics:      p.Metrics,
	}
}

func (s *Service) CreateForConversion(ctx context.Context, referral *referraldomain.Referral) ([]domain.Reward, error) {
	if referral == nil || referral.Status != referraldomain.StatusConverted {
		return nil, nil
	}

	tiers, ok := tiersByReferrerType[referral.ReferrerType]
	if !ok {
		return nil, fmt.Errorf("no reward tiers for referrer type %q", referral.ReferrerType)
	}
	if referral.SubscriptionValue == nil {
		return nil, fmt.Errorf("%w: missing", domain.ErrInvalidSubscriptionValue)
	}
	base := *referral.SubscriptionValue
	if base <= 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSubscriptionValue, base)
	}

	now := s.clock.Now()
	rewards := make([]domain.Reward, 0, len(tiers))
	for _, t := range tiers {
		rewards = append(rewards, domain.Reward{
			ID:                s.genID.Generate(),
			ReferralID:        referral.ID,
			ReferrerID:        referral.ReferrerID,
			ReferrerType:      referral.ReferrerType,
			ReferrerCompanyID: referral.ReferrerCompanyID,
			AmountEur:         roundEur(base * t.share),
			DueDate:           now.AddDate(0, 0, t.dueDays),
			Status:            domain.RewardStatusScheduled,
			PayoutChannel:     domain.ChannelMemberCredit,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	if err := s.repo.InsertBatch(ctx, s.db, rewards); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RewardsCreated.Add(float64(len(rewards)))
	}
	return rewards, nil
}

// ProcessDue runs one settlement pass. Each due reward is settled
// independently; a payout or status-write failure on one never stops the
// rest of the pass, and a touched reward always leaves SCHEDULED.
func (s *Service) ProcessDue(ctx context.Context) error {
	now := s.clock.Now()
	start := time.Now()

	due, err := s.repo.FindDue(ctx, s.db, now)
	if err != nil {
		return fmt.Errorf("query due rewards: %w", err)
	}
	if len(due) == 0 {
		return nil
	}
	s.log.Info("settlement pass started", zap.Int("due", len(due)))

	for _, reward := range due {
		s.settleOne(ctx, reward, now)
	}

	if s.metrics != nil {
		s.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

func (s *Service) settleOne(ctx context.Context, reward domain.Reward, now time.Time) {
	log := s.log.With(
		zap.String("reward_id", reward.ID.String()),
		zap.String("referrer_id", reward.ReferrerID),
		zap.String("channel", string(reward.PayoutChannel)),
		zap.Float64("amount_eur", reward.AmountEur),
	)

	payErr := s.payout(ctx, reward, now)
	if payErr == nil {
		if err := s.repo.MarkPaid(ctx, s.db, reward.ID, now); err != nil {
			log.Error("failed to mark reward paid", zap.Error(err))
			return
		}
		if s.metrics != nil {
			s.metrics.RewardsSettled.WithLabelValues(string(reward.PayoutChannel)).Inc()
		}
		log.Info("reward settled")
		return
	}

	// The FAILED write must land even though the payout failed; a touched
	// reward is never left silently unprocessed.
	if err := s.repo.MarkFailed(ctx, s.db, reward.ID, payErr.Error(), now); err != nil {
		log.Error("failed to mark reward failed", zap.NamedError("payout_error", payErr), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RewardsFailed.WithLabelValues(string(reward.PayoutChannel)).Inc()
	}
	log.Warn("reward settlement failed", zap.Error(payErr))
}

func (s *Service) payout(ctx context.Context, reward domain.Reward, now time.Time) error {
	switch reward.PayoutChannel {
	case domain.ChannelMemberCredit:
		_, err := s.directory.AddNewFee(ctx, directory.NewFeeRequest{
			MemberID:  reward.ReferrerID,
			FeeName:   s.feeName,
			PlanID:    s.feePlanID,
			Price:     reward.AmountEur,
			IssueDate: now,
			CompanyID: reward.ReferrerCompanyID,
		})
		return err
	case domain.ChannelBankTransfer:
		_, err := s.bankTransfer.IssueTransfer(ctx, reward.ReferrerID, reward.AmountEur)
		return err
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownPayoutChannel, reward.PayoutChannel)
	}
}

func (s *Service) VoidFuture(ctx context.Context, referralID snowflake.ID) error {
	now := s.clock.Now()
	var voided int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.VoidScheduled(ctx, tx, referralID, now)
		if err != nil {
			return err
		}
		voided = n
		return nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RewardsVoided.Add(float64(voided))
	}
	s.log.Info("voided future rewards",
		zap.String("referral_id", referralID.String()),
		zap.Int64("count", voided),
	)
	return nil
}

func (s *Service) ListByReferral(ctx context.Context, referralID snowflake.ID) ([]domain.Reward, error) {
	return s.repo.FindByReferralID(ctx, s.db, referralID)
}

// roundEur rounds to the euro's minor unit.
func roundEur(v float64) float64 {
	return math.Round(v*100) / 100
}
