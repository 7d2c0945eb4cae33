package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, rewards []Reward) error
	FindDue(ctx context.Context, db *gorm.DB, now time.Time) ([]Reward, error)
	FindByReferralID(ctx context.Context, db *gorm.DB, referralID snowflake.ID) ([]Reward, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paidAt time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, message string, at time.Time) error
	VoidScheduled(ctx context.Context, db *gorm.DB, referralID snowflake.ID, at time.Time) (int64, error)
}
