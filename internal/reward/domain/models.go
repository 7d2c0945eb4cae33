package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
)

// RewardStatus is the reward state machine: SCHEDULED → PAID | FAILED | VOID.
// PAID, FAILED and VOID are terminal; a FAILED reward is not retried by the
// settlement job.
type RewardStatus string

const (
	RewardStatusScheduled RewardStatus = "SCHEDULED"
	RewardStatusPaid      RewardStatus = "PAID"
	RewardStatusFailed    RewardStatus = "FAILED"
	RewardStatusVoid      RewardStatus = "VOID"
)

// PayoutChannel selects the mechanism that delivers a reward's value.
type PayoutChannel string

const (
	ChannelMemberCredit PayoutChannel = "member-credit"
	ChannelBankTransfer PayoutChannel = "bank-transfer"
	ChannelManual       PayoutChannel = "manual"
)

// Reward is one scheduled payout owed to a referrer for a converted
// referral.
type Reward struct {
	ID                snowflake.ID         `gorm:"primaryKey" json:"id"`
	ReferralID        snowflake.ID         `gorm:"not null;index" json:"referral_id"`
	ReferrerID        string               `gorm:"not null;index" json:"referrer_id"`
	ReferrerType      codedomain.OwnerType `gorm:"type:text;not null" json:"referrer_type"`
	ReferrerCompanyID *string              `json:"referrer_company_id,omitempty"`
	AmountEur         float64              `gorm:"not null" json:"amount_eur"`
	DueDate           time.Time            `gorm:"not null;index" json:"due_date"`
	Status            RewardStatus         `gorm:"type:text;not null;index" json:"status"`
	PayoutChannel     PayoutChannel        `gorm:"type:text;not null" json:"payout_channel"`
	PaidAt            *time.Time           `json:"paid_at,omitempty"`
	LastError         *string              `json:"last_error,omitempty"`
	CreatedAt         time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Reward) TableName() string { return "rewards" }
