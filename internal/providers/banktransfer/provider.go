package banktransfer

import (
	"context"
	"errors"
)

var ErrRequestFailed = errors.New("bank_transfer_request_failed")

// Provider issues monetary transfers to referrers.
type Provider interface {
	IssueTransfer(ctx context.Context, payeeID string, amountEur float64) (string, error)
}

// NoOpProvider satisfies Provider without an upstream payment processor.
type NoOpProvider struct{}

func (p *NoOpProvider) IssueTransfer(ctx context.Context, payeeID string, amountEur float64) (string, error) {
	return "noop-transfer", nil
}
