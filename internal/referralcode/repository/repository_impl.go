package repository

import (
	"context"
	"errors"

	"github.com/coworklabs/perks/internal/referralcode/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, code *domain.ReferralCode) error {
	return db.WithContext(ctx).Create(code).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ReferralCode, error) {
	var rc domain.ReferralCode
	err := db.WithContext(ctx).First(&rc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *repo) HasReferredUser(ctx context.Context, db *gorm.DB, code, userID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ReferredUser{}).
		Where("code = ? AND user_id = ?", code, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) AppendReferredUser(ctx context.Context, db *gorm.DB, entry *domain.ReferredUser) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) IncrementTotalReferred(ctx context.Context, db *gorm.DB, code string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE referral_codes SET total_referred = total_referred + 1, updated_at = CURRENT_TIMESTAMP WHERE code = ?`,
		code,
	).Error
}

func (r *repo) IncrementTotalConverted(ctx context.Context, db *gorm.DB, code string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE referral_codes SET total_converted = total_converted + 1, updated_at = CURRENT_TIMESTAMP WHERE code = ?`,
		code,
	).Error
}
