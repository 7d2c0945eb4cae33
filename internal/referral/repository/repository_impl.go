package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/referral/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, referral *domain.Referral) error {
	return db.WithContext(ctx).Create(referral).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Referral, error) {
	var referral domain.Referral
	err := db.WithContext(ctx).First(&referral, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repo) FindByReferredUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Referral, error) {
	var referral domain.Referral
	err := db.WithContext(ctx).First(&referral, "referred_user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repo) MarkConverted(ctx context.Context, db *gorm.DB, referral *domain.Referral) error {
	return db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("id = ?", referral.ID).
		Updates(map[string]any{
			"status":       referral.Status,
			"converted_at": referral.ConvertedAt,
			"updated_at":   referral.UpdatedAt,
		}).Error
}

func (r *repo) SetRewardIDs(ctx context.Context, db *gorm.DB, id snowflake.ID, rewardIDs datatypes.JSON) error {
	return db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("id = ?", id).
		Update("reward_ids", rewardIDs).Error
}
