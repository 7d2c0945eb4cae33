package directory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMemberNotFound = errors.New("member_not_found")
	ErrRequestFailed  = errors.New("directory_request_failed")
)

// Member is the subset of the directory's member record the referral
// program reads and writes.
type Member struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	CompanyID        *string `json:"companyId,omitempty"`
	ReferralOwnCode  string  `json:"referralOwnCode,omitempty"`
	ReferralCodeUsed string  `json:"referralCodeUsed,omitempty"`
}

// MemberUpdate carries the partial fields of an update; nil fields are
// left untouched by the directory.
type MemberUpdate struct {
	ReferralOwnCode  *string `json:"referralOwnCode,omitempty"`
	ReferralCodeUsed *string `json:"referralCodeUsed,omitempty"`
}

// NewFeeRequest creates an invoice line on the member's next invoice. It is
// the member-credit payout channel.
type NewFeeRequest struct {
	MemberID  string    `json:"memberId"`
	FeeName   string    `json:"feeName"`
	PlanID    string    `json:"planId,omitempty"`
	Price     float64   `json:"price"`
	IssueDate time.Time `json:"issueDate"`
	CompanyID *string   `json:"companyId,omitempty"`
}

// Provider is the member directory adapter.
type Provider interface {
	GetMember(ctx context.Context, id string) (*Member, error)
	UpdateMember(ctx context.Context, id string, update MemberUpdate) error
	AddNewFee(ctx context.Context, req NewFeeRequest) (string, error)
}

// NoOpProvider satisfies Provider without an upstream directory. Used in
// development and tests.
type NoOpProvider struct{}

func (p *NoOpProvider) GetMember(ctx context.Context, id string) (*Member, error) {
	return &Member{ID: id}, nil
}

func (p *NoOpProvider) UpdateMember(ctx context.Context, id string, update MemberUpdate) error {
	return nil
}

func (p *NoOpProvider) AddNewFee(ctx context.Context, req NewFeeRequest) (string, error) {
	return "noop-fee", nil
}
