package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/reward/domain"
	"gorm.io/gorm"
)

// batchLimit bounds one insert statement, mirroring the store's 500
// operations per batch ceiling.
const batchLimit = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, rewards []domain.Reward) error {
	if len(rewards) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rewards, batchLimit).Error
}

func (r *repo) FindDue(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Reward, error) {
	var rewards []domain.Reward
	err := db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", domain.RewardStatusScheduled, now).
		Order("due_date asc, id asc").
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repo) FindByReferralID(ctx context.Context, db *gorm.DB, referralID snowflake.ID) ([]domain.Reward, error) {
	var rewards []domain.Reward
	err := db.WithContext(ctx).
		Where("referral_id = ?", referralID).
		Order("due_date asc, id asc").
		Find(&rewards).Error
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paidAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Reward{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     domain.RewardStatusPaid,
			"paid_at":    paidAt,
			"last_error": nil,
			"updated_at": paidAt,
		}).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, message string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Reward{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     domain.RewardStatusFailed,
			"last_error": message,
			"updated_at": at,
		}).Error
}

func (r *repo) VoidScheduled(ctx context.Context, db *gorm.DB, referralID snowflake.ID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Reward{}).
		Where("referral_id = ? AND status = ?", referralID, domain.RewardStatusScheduled).
		Updates(map[string]any{
			"status":     domain.RewardStatusVoid,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}
