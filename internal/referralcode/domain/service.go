package domain

import "context"

type CreateRequest struct {
	OwnerID        string    `json:"owner_id"`
	OwnerCompanyID *string   `json:"owner_company_id,omitempty"`
	OwnerType      OwnerType `json:"owner_type"`
}

type Service interface {
	Create(context.Context, CreateRequest) (*ReferralCode, error)
	GetByCode(context.Context, string) (*ReferralCode, error)
}
