// Package models defines the domain entities of the authorization server:
// relying-party clients, authorization grants, tokens, subjects, service
// access records, and audit events.
package models

import "time"

// ClientStatus is the lifecycle status of a registered client.
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusSuspended ClientStatus = "suspended"
)

// Client is a registered relying party owned by the organization registry.
// It is immutable for the duration of a single authorization transaction.
type Client struct {
	// ID is the client_id presented on authorization and token requests.
	ID string `json:"id" db:"id"`

	// OrganizationID links the client to its owning organization.
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// Name is a display name for consent and audit output.
	Name string `json:"name" db:"name"`

	// SecretHash is the bcrypt hash of the client secret. The plaintext
	// secret is never stored.
	SecretHash string `json:"-" db:"secret_hash"`

	// RedirectURI is the registered callback URL. Redirect validation is an
	// exact string comparison against this value.
	RedirectURI string `json:"redirect_uri" db:"redirect_uri"`

	// AllowedScopes is the set of scopes the client may be granted.
	AllowedScopes []string `json:"allowed_scopes" db:"allowed_scopes"`

	Status    ClientStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the client may initiate authorization flows.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// MatchesRedirectURI performs the exact-match comparison against the
// registered callback URL. No prefix, scheme, port, or trailing-slash
// leniency: anything other than byte equality is a mismatch.
func (c *Client) MatchesRedirectURI(uri string) bool {
	return uri != "" && uri == c.RedirectURI
}

// AllowsScope reports whether a single scope is registered for the client.
func (c *Client) AllowsScope(scope string) bool {
	for _, s := range c.AllowedScopes {
		if s == scope {
			return true
		}
	}
	return false
}
