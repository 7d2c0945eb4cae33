package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/metrics"
	"github.com/coworklabs/perks/internal/providers/directory"
	"github.com/coworklabs/perks/internal/referralcode/domain"
	"github.com/coworklabs/perks/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeLength   = 6
	codeCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeTries = 10
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Directory directory.Provider
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	directory directory.Provider
	clock     clock.Clock
	metrics   *metrics.Metrics

	// newCode is swapped out by tests to force collisions.
	newCode func() (string, error)
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("referralcode.service"),
		repo:      p.Repo,
		directory: p.Directory,
		clock:     p.Clock,
		metrics:   p.Metrics,
		newCode:   randomCode,
	}
}

// Create issues a unique referral code for a referrer. The candidate code
// insert relies on the primary key, so a collision shows up as a duplicate
// key error and triggers regeneration. Ten consecutive collisions in a
// 36^6 space indicate a system fault, not a retryable condition.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ReferralCode, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, domain.ErrInvalidOwner
	}
	if !req.OwnerType.Valid() {
		return nil, domain.ErrInvalidOwnerType
	}

	var created *domain.ReferralCode
	for attempt := 0; attempt < maxCodeTries; attempt++ {
		candidate, err := s.newCode()
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		rc := &domain.ReferralCode{
			Code:           candidate,
			OwnerID:        ownerID,
			OwnerCompanyID: req.OwnerCompanyID,
			OwnerType:      req.OwnerType,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		err = s.repo.Insert(ctx, s.db, rc)
		if err == nil {
			created = rc
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.CodeCollisions.Inc()
		}
		s.log.Debug("referral code collision, regenerating",
			zap.String("code", candidate),
			zap.Int("attempt", attempt+1),
		)
	}
	if created == nil {
		return nil, fmt.Errorf("%w: %d attempts", domain.ErrCodeSpaceExhausted, maxCodeTries)
	}

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}

	// The code is durable at this point; mirroring it onto the directory
	// record is informational and must not fail the call.
	if err := s.directory.UpdateMember(ctx, ownerID, directory.MemberUpdate{
		ReferralOwnCode: &created.Code,
	}); err != nil {
		s.log.Warn("failed to write referral code to directory record",
			zap.String("owner_id", ownerID),
			zap.String("code", created.Code),
			zap.Error(err),
		)
	}

	return created, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	rc, err := s.repo.FindByCode(ctx, s.db, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, domain.ErrNotFound
	}
	return rc, nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return string(buf), nil
}
