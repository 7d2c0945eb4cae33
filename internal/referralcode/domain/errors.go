package domain

import "errors"

var (
	ErrNotFound           = errors.New("referral_code_not_found")
	ErrInvalidOwner       = errors.New("invalid_owner")
	ErrInvalidOwnerType   = errors.New("invalid_owner_type")
	ErrCodeSpaceExhausted = errors.New("referral_code_space_exhausted")
)
