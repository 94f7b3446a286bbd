package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// clerkUser mirrors the provider's user payload; only the fields the sync
// operation needs are decoded.
type clerkUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

type ClerkProvider struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClerkProvider(baseURL, secretKey string) *ClerkProvider {
	return &ClerkProvider{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *ClerkProvider) FetchProfile(ctx context.Context, externalID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/users/"+externalID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var user clerkUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity provider response: %w", err)
	}

	profile := &Profile{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageURL:  user.ImageURL,
	}

	for _, addr := range user.EmailAddresses {
		if addr.ID == user.PrimaryEmailAddressID {
			profile.Email = addr.EmailAddress
			break
		}
	}
	if profile.Email == "" && len(user.EmailAddresses) > 0 {
		profile.Email = user.EmailAddresses[0].EmailAddress
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("identity %s has no email address", externalID)
	}

	return profile, nil
}
