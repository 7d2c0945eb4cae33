package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository takes the db handle per call so services can pass a
// transaction through.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, code *ReferralCode) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*ReferralCode, error)
	HasReferredUser(ctx context.Context, db *gorm.DB, code, userID string) (bool, error)
	AppendReferredUser(ctx context.Context, db *gorm.DB, entry *ReferredUser) error
	IncrementTotalReferred(ctx context.Context, db *gorm.DB, code string) error
	IncrementTotalConverted(ctx context.Context, db *gorm.DB, code string) error
}
