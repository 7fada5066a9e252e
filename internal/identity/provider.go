package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/narekgrig/shopfront-backend/pkg/config"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
)

// Provider supplies the live email-verification flag for a user. The flag
// lives in the identity system, not on the stored profile: granting the
// first-shop discount requires both the profile flag and this lookup.
type Provider interface {
	EmailVerified(ctx context.Context, userID string) (bool, error)
}

// HTTPProvider queries the identity service over its admin REST surface.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider builds an identity client from configuration.
func NewHTTPProvider(cfg config.IdentityConfig) (*HTTPProvider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("identity base url is required")
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type userRecord struct {
	EmailVerified bool `json:"email_verified"`
}

func (p *HTTPProvider) EmailVerified(ctx context.Context, userID string) (bool, error) {
	endpoint := p.baseURL + "/v1/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build identity request")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query identity provider")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "identity record not found")
	default:
		return false, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("identity provider returned %d", resp.StatusCode))
	}

	var record userRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode identity response")
	}
	return record.EmailVerified, nil
}

// Static is a fixed-map provider for tests and local development.
type Static map[string]bool

func (s Static) EmailVerified(ctx context.Context, userID string) (bool, error) {
	return s[userID], nil
}
