package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, referral *Referral) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Referral, error)
	FindByReferredUserID(ctx context.Context, db *gorm.DB, userID string) (*Referral, error)
	MarkConverted(ctx context.Context, db *gorm.DB, referral *Referral) error
	SetRewardIDs(ctx context.Context, db *gorm.DB, id snowflake.ID, rewardIDs datatypes.JSON) error
}
