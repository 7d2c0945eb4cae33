package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CreateRequest is the referral event. Exactly one of the trial or the
// membership field group must be set; the referrer identity comes from the
// code record, not the request.
type CreateRequest struct {
	ReferralCode   string `json:"referral_code"`
	ReferredUserID string `json:"referred_user_id"`

	TrialStartDate *time.Time `json:"trial_start_date,omitempty"`
	TrialDayID     *string    `json:"trial_day_id,omitempty"`
	OpportunityID  *string    `json:"opportunity_id,omitempty"`

	MembershipStartDate *time.Time `json:"membership_start_date,omitempty"`
	SubscriptionValue   *float64   `json:"subscription_value,omitempty"`
	ReferralValue       *float64   `json:"referral_value,omitempty"`
}

type Service interface {
	Create(context.Context, CreateRequest) (*Referral, error)
	ConfirmConversion(context.Context, snowflake.ID) (*Referral, error)
	GetByID(context.Context, snowflake.ID) (*Referral, error)
}
