package banktransfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coworklabs/perks/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RESTProvider talks to the payment processor's transfer API.
type RESTProvider struct {
	cfg    config.BankTransferConfig
	client *http.Client
	log    *zap.Logger
}

func NewREST(cfg config.BankTransferConfig, log *zap.Logger) *RESTProvider {
	return &RESTProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("banktransfer"),
	}
}

type transferRequest struct {
	PayeeID   string  `json:"payeeId"`
	AmountEur float64 `json:"amountEur"`
	Currency  string  `json:"currency"`
}

func (p *RESTProvider) IssueTransfer(ctx context.Context, payeeID string, amountEur float64) (string, error) {
	encoded, err := json.Marshal(transferRequest{
		PayeeID:   payeeID,
		AmountEur: amountEur,
		Currency:  "EUR",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/transfers", bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: transfer status %d", ErrRequestFailed, resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrRequestFailed, err)
	}
	return out.ID, nil
}
