package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("referral_not_found")
	ErrDataInvalid     = errors.New("referral_data_invalid")
	ErrInvalidArgument = errors.New("invalid_argument")
	ErrSelfReferral    = errors.New("self_referral")

	// ErrAlreadyReferred: the user already appears in this code's
	// referred-user set.
	ErrAlreadyReferred = errors.New("already_referred_with_this_code")

	// ErrAlreadyReferredOtherCode: the user is the subject of a referral
	// under a different code. Match with errors.Is; the conflicting code is
	// carried by OtherCodeConflictError.
	ErrAlreadyReferredOtherCode = errors.New("already_referred_with_another_code")

	// ErrNotEligible: the referral is not in AWAITING_PAYMENT. The current
	// status is carried by NotEligibleError.
	ErrNotEligible = errors.New("not_eligible_for_conversion")
)

// OtherCodeConflictError names the code under which the user was already
// referred, so an admin-facing caller can explain the rejection.
type OtherCodeConflictError struct {
	ExistingCode string
}

func (e *OtherCodeConflictError) Error() string {
	return fmt.Sprintf("already referred with code %s", e.ExistingCode)
}

func (e *OtherCodeConflictError) Is(target error) bool {
	return target == ErrAlreadyReferredOtherCode
}

// NotEligibleError carries the referral's current status.
type NotEligibleError struct {
	Status Status
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("referral not eligible for conversion, current status %s", e.Status)
}

func (e *NotEligibleError) Is(target error) bool {
	return target == ErrNotEligible
}
