// Package identity talks to the external identity provider. The core never
// issues or validates credentials; it only fetches profile attributes for
// an already-verified external identity.
package identity

import "context"

// Profile holds the attributes the provider knows about an identity.
type Profile struct {
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

type Provider interface {
	// FetchProfile returns the profile attributes for the external identity.
	FetchProfile(ctx context.Context, externalID string) (*Profile, error)
}
