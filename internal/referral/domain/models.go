package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	"gorm.io/datatypes"
)

// Status is the referral lifecycle state machine:
// TRIAL → AWAITING_PAYMENT → CONVERTED → (CANCELLED_EARLY).
// A referral created directly against a membership starts at AWAITING_PAYMENT.
type Status string

const (
	StatusTrial           Status = "TRIAL"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusConverted       Status = "CONVERTED"
	StatusCancelledEarly  Status = "CANCELLED_EARLY"
)

// Referral records one referred user against one referral code. The unique
// index on ReferredUserID backs the one-referral-per-user rule across all
// codes.
type Referral struct {
	ID                snowflake.ID         `gorm:"primaryKey" json:"id"`
	ReferrerID        string               `gorm:"not null;index" json:"referrer_id"`
	ReferrerCompanyID *string              `json:"referrer_company_id,omitempty"`
	ReferrerType      codedomain.OwnerType `gorm:"type:text;not null" json:"referrer_type"`
	ReferredUserID    string               `gorm:"not null;uniqueIndex" json:"referred_user_id"`
	ReferralCode      string               `gorm:"not null;index;type:varchar(6)" json:"referral_code"`

	// Trial branch
	TrialStartDate *time.Time `json:"trial_start_date,omitempty"`
	TrialDayID     *string    `json:"trial_day_id,omitempty"`
	OpportunityID  *string    `json:"opportunity_id,omitempty"`

	// Membership branch
	MembershipStartDate *time.Time `json:"membership_start_date,omitempty"`
	SubscriptionValue   *float64   `json:"subscription_value,omitempty"`
	ReferralValue       *float64   `json:"referral_value,omitempty"`

	Status      Status         `gorm:"type:text;not null" json:"status"`
	RewardIDs   datatypes.JSON `json:"reward_ids,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	ConvertedAt *time.Time     `json:"converted_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Referral) TableName() string { return "referrals" }

// RewardIDList decodes the append-only reward id list.
func (r *Referral) RewardIDList() []string {
	if len(r.RewardIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(r.RewardIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeRewardIDs encodes ids for the RewardIDs column.
func EncodeRewardIDs(ids []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
