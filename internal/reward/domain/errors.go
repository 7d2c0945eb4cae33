package domain

import "errors"

var (
	ErrInvalidSubscriptionValue = errors.New("invalid_subscription_value")
	ErrUnknownPayoutChannel     = errors.New("unknown_payout_channel")
)
