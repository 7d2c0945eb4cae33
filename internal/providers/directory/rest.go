package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/coworklabs/perks/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RESTProvider talks to the membership manager's REST API.
type RESTProvider struct {
	cfg    config.DirectoryConfig
	client *http.Client
	log    *zap.Logger
}

func NewREST(cfg config.DirectoryConfig, log *zap.Logger) *RESTProvider {
	return &RESTProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Named("directory"),
	}
}

func (p *RESTProvider) GetMember(ctx context.Context, id string) (*Member, error) {
	var member Member
	status, err := p.do(ctx, http.MethodGet, "/members/"+url.PathEscape(id), nil, &member)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrMemberNotFound
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: get member status %d", ErrRequestFailed, status)
	}
	return &member, nil
}

func (p *RESTProvider) UpdateMember(ctx context.Context, id string, update MemberUpdate) error {
	status, err := p.do(ctx, http.MethodPatch, "/members/"+url.PathEscape(id), update, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return ErrMemberNotFound
	}
	if status >= 300 {
		return fmt.Errorf("%w: update member status %d", ErrRequestFailed, status)
	}
	return nil
}

func (p *RESTProvider) AddNewFee(ctx context.Context, req NewFeeRequest) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	status, err := p.do(ctx, http.MethodPost, "/fees", req, &resp)
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", fmt.Errorf("%w: add fee status %d", ErrRequestFailed, status)
	}
	return resp.ID, nil
}

func (p *RESTProvider) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode: %v", ErrRequestFailed, err)
		}
	}
	return resp.StatusCode, nil
}
