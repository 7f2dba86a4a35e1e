package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/folio-sh/folio/db"
)

// SessionIDHeader carries the provider session id on verification requests.
const SessionIDHeader = "X-Session-ID"

// ErrSessionInvalid is returned when the hosted login provider rejects
// a session id.
var ErrSessionInvalid = errors.New("oauth2: session id rejected by provider")

// ExchangeClient verifies session ids issued by a hosted login provider.
// The client posts the session id it received from the browser to the
// provider's verify endpoint and gets the authenticated profile back.
type ExchangeClient struct {
	client *http.Client
}

func NewExchangeClient(timeout time.Duration) *ExchangeClient {
	return &ExchangeClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Verify resolves a provider session id into the authenticated user's
// profile. The returned user has no ID; the database assigns one on
// insert or lookup.
func (c *ExchangeClient) Verify(ctx context.Context, verifyURL, sessionID string) (*db.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oauth2: failed to build verify request: %w", err)
	}
	req.Header.Set(SessionIDHeader, sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth2: verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, ErrSessionInvalid
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth2: provider returned status %d", resp.StatusCode)
	}

	extracted := struct {
		Id      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("oauth2: failed to decode provider profile: %w", err)
	}
	if extracted.Email == "" {
		return nil, fmt.Errorf("oauth2: provider profile has no email")
	}

	name := extracted.Name
	if name == "" {
		name = extracted.Email
	}

	return &db.User{
		Email:    extracted.Email,
		Name:     name,
		Avatar:   extracted.Picture,
		Provider: db.ProviderSessionExchange,
	}, nil
}
