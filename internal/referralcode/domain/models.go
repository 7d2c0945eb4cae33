package domain

import "time"

// OwnerType distinguishes the two referrer populations.
type OwnerType string

const (
	OwnerTypeMember   OwnerType = "member"
	OwnerTypeBusiness OwnerType = "business"
)

func (t OwnerType) Valid() bool {
	return t == OwnerTypeMember || t == OwnerTypeBusiness
}

// ReferralCode is the per-referrer code record. The code string is the
// primary key; counters are only ever mutated inside a transaction.
type ReferralCode struct {
	Code             string    `gorm:"primaryKey;type:varchar(6)" json:"code"`
	OwnerID          string    `gorm:"not null;index" json:"owner_id"`
	OwnerCompanyID   *string   `json:"owner_company_id,omitempty"`
	OwnerType        OwnerType `gorm:"type:text;not null" json:"owner_type"`
	TotalReferred    int       `gorm:"not null;default:0" json:"total_referred"`
	TotalConverted   int       `gorm:"not null;default:0" json:"total_converted"`
	TotalRewardedEur float64   `gorm:"not null;default:0" json:"total_rewarded_eur"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (ReferralCode) TableName() string { return "referral_codes" }

// ReferredUser is one entry of a code's referred-user set. The composite
// primary key makes the set idempotent and duplicate-free.
type ReferredUser struct {
	Code      string    `gorm:"primaryKey;type:varchar(6)" json:"code"`
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (ReferredUser) TableName() string { return "referral_code_users" }
