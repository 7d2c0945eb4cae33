package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
)

type Service interface {
	// CreateForConversion computes the tiered reward schedule for a
	// converted referral and persists it in one batch. It is a no-op for a
	// referral in any other status.
	CreateForConversion(ctx context.Context, referral *referraldomain.Referral) ([]Reward, error)

	// ProcessDue settles every SCHEDULED reward whose due date has passed.
	// Per-reward failures are downgraded to a FAILED status write; the run
	// only errors if the due-reward query itself fails.
	ProcessDue(ctx context.Context) error

	// VoidFuture flips the referral's SCHEDULED rewards to VOID in one
	// batch. PAID and FAILED rewards are untouched.
	VoidFuture(ctx context.Context, referralID snowflake.ID) error

	ListByReferral(ctx context.Context, referralID snowflake.ID) ([]Reward, error)
}
