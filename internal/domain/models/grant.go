package models

import "time"

// AuthorizationGrant is the ephemeral record bound to an opaque authorization
// code. It is created when a user completes interactive login for a client
// and destroyed on redemption or expiry. A grant is consumed exactly once;
// the store's consume operation is an atomic check-and-delete.
type AuthorizationGrant struct {
	// Code is the opaque 32-hex-character value handed to the client.
	Code string `json:"code"`

	// SubjectID is the authenticated user the grant was issued for.
	SubjectID string `json:"subject_id"`

	// ClientID is the client the grant was issued to. Redemption with any
	// other client_id is rejected.
	ClientID string `json:"client_id"`

	// RedirectURI is the redirect_uri the code was issued against.
	RedirectURI string `json:"redirect_uri"`

	// Scope is the granted scope set, space-delimited.
	Scope string `json:"scope"`

	// Nonce is echoed into the ID token when present.
	Nonce string `json:"nonce,omitempty"`

	// OrganizationID is the owning organization captured at authorization.
	OrganizationID string `json:"organization_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthorizationGrant creates a grant with a fixed TTL from now.
func NewAuthorizationGrant(code, subjectID, clientID, redirectURI, scope, nonce, organizationID string, ttl time.Duration) *AuthorizationGrant {
	now := time.Now().UTC()
	return &AuthorizationGrant{
		Code:           code,
		SubjectID:      subjectID,
		ClientID:       clientID,
		RedirectURI:    redirectURI,
		Scope:          scope,
		Nonce:          nonce,
		OrganizationID: organizationID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}

// IsExpired reports whether the grant is past its expiry. Expiry is enforced
// by timestamp comparison at read time; the store TTL is hygiene, not the
// correctness mechanism.
func (g *AuthorizationGrant) IsExpired() bool {
	return time.Now().UTC().After(g.ExpiresAt)
}

// BelongsTo reports whether the grant was issued to the given client. This
// is the check that prevents code substitution across clients.
func (g *AuthorizationGrant) BelongsTo(clientID string) bool {
	return g.ClientID == clientID
}
