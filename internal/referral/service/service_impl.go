package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/metrics"
	"github.com/coworklabs/perks/internal/providers/directory"
	"github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	CodeRepo  codedomain.Repository
	RewardSvc rewarddomain.Service
	Directory directory.Provider
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	codeRepo  codedomain.Repository
	rewardSvc rewarddomain.Service
	directory directory.Provider
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("referral.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		codeRepo:  p.CodeRepo,
		rewardSvc: p.RewardSvc,
		directory: p.Directory,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

// Create validates and records a referral event. Validation happens before
// any write; the uniqueness and self-referral guards run inside one
// transaction together with the code's counter updates.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Referral, error) {
	code := strings.ToUpper(strings.TrimSpace(req.ReferralCode))
	referredUserID := strings.TrimSpace(req.ReferredUserID)
	if code == "" {
		return nil, fmt.Errorf("%w: referralCode is required", domain.ErrInvalidArgument)
	}
	if referredUserID == "" {
		return nil, fmt.Errorf("%w: referredUserId is required", domain.ErrInvalidArgument)
	}

	status, err := validateBranch(req)
	if err != nil {
		return nil, err
	}

	var referral *domain.Referral
	err = s.db.Transaction(func(tx *gorm.DB) error {
		rc, err := s.codeRepo.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if rc == nil {
			return codedomain.ErrNotFound
		}

		used, err := s.codeRepo.HasReferredUser(ctx, tx, code, referredUserID)
		if err != nil {
			return err
		}
		if used {
			return domain.ErrAlreadyReferred
		}

		if referredUserID == rc.OwnerID {
			return domain.ErrSelfReferral
		}

		existing, err := s.repo.FindByReferredUserID(ctx, tx, referredUserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.OtherCodeConflictError{ExistingCode: existing.ReferralCode}
		}

		now := s.clock.Now()
		referral = &domain.Referral{
			ID:                s.genID.Generate(),
			ReferrerID:        rc.OwnerID,
			ReferrerCompanyID: rc.OwnerCompanyID,
			ReferrerType:      rc.OwnerType,
			ReferredUserID:    referredUserID,
			ReferralCode:      code,

			TrialStartDate: req.TrialStartDate,
			TrialDayID:     req.TrialDayID,
			OpportunityID:  req.OpportunityID,

			MembershipStartDate: req.MembershipStartDate,
			SubscriptionValue:   req.SubscriptionValue,
			ReferralValue:       req.ReferralValue,

			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, referral); err != nil {
			return err
		}

		if err := s.codeRepo.IncrementTotalReferred(ctx, tx, code); err != nil {
			return err
		}
		return s.codeRepo.AppendReferredUser(ctx, tx, &codedomain.ReferredUser{
			Code:      code,
			UserID:    referredUserID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReferralsRecorded.WithLabelValues(string(status)).Inc()
	}

	// The directory is outside the store's transactional domain; mirroring
	// the used code onto the referred user's record is best-effort.
	if err := s.directory.UpdateMember(ctx, referredUserID, directory.MemberUpdate{
		ReferralCodeUsed: &code,
	}); err != nil {
		s.log.Warn("failed to write used referral code to directory record",
			zap.String("referred_user_id", referredUserID),
			zap.String("code", code),
			zap.Error(err),
		)
	}

	return referral, nil
}

// ConfirmConversion advances the referral to CONVERTED and bumps the
// code's conversion counter in one transaction. Reward creation runs after
// commit so the conversion stays durable even if reward creation fails.
func (s *Service) ConfirmConversion(ctx context.Context, id snowflake.ID) (*domain.Referral, error) {
	var referral *domain.Referral
	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		if found.Status == "" || found.ReferredUserID == "" {
			return domain.ErrDataInvalid
		}
		if found.Status != domain.StatusAwaitingPayment {
			return &domain.NotEligibleError{Status: found.Status}
		}

		now := s.clock.Now()
		found.Status = domain.StatusConverted
		found.ConvertedAt = &now
		found.UpdatedAt = now
		if err := s.repo.MarkConverted(ctx, tx, found); err != nil {
			return err
		}

		referral = found
		return s.codeRepo.IncrementTotalConverted(ctx, tx, found.ReferralCode)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Conversions.Inc()
	}

	rewards, err := s.rewardSvc.CreateForConversion(ctx, referral)
	if err != nil {
		return nil, fmt.Errorf("create rewards for referral %s: %w", referral.ID, err)
	}
	if len(rewards) == 0 {
		return referral, nil
	}

	ids := make([]string, 0, len(rewards))
	for _, reward := range rewards {
		ids = append(ids, reward.ID.String())
	}
	encoded, err := domain.EncodeRewardIDs(ids)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRewardIDs(ctx, s.db, referral.ID, encoded); err != nil {
		return nil, err
	}
	referral.RewardIDs = encoded

	return referral, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Referral, error) {
	referral, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, domain.ErrNotFound
	}
	return referral, nil
}

// validateBranch enforces the trial XOR membership field groups and
// returns the referral's initial status.
func validateBranch(req domain.CreateRequest) (domain.Status, error) {
	trial := req.TrialStartDate != nil
	membership := req.MembershipStartDate != nil

	switch {
	case trial && membership:
		return "", fmt.Errorf("%w: trialStartDate and membershipStartDate are mutually exclusive", domain.ErrInvalidArgument)
	case trial:
		if req.SubscriptionValue != nil {
			return "", fmt.Errorf("%w: subscriptionValue must be absent for a trial referral", domain.ErrInvalidArgument)
		}
		if req.ReferralValue != nil {
			return "", fmt.Errorf("%w: referralValue must be absent for a trial referral", domain.ErrInvalidArgument)
		}
		return domain.StatusTrial, nil
	case membership:
		if req.SubscriptionValue == nil || *req.SubscriptionValue <= 0 {
			return "", fmt.Errorf("%w: subscriptionValue must be a positive number", domain.ErrInvalidArgument)
		}
		if req.ReferralValue == nil || *req.ReferralValue <= 0 {
			return "", fmt.Errorf("%w: referralValue must be a positive number", domain.ErrInvalidArgument)
		}
		return domain.StatusAwaitingPayment, nil
	default:
		return "", fmt.Errorf("%w: either trialStartDate or membershipStartDate is required", domain.ErrInvalidArgument)
	}
}
