package models

import (
	"time"

	"github.com/wangov/sso/pkg/constants"
)

// Token is the decoded form of a signed token, used by verification paths
// and introspection. The signed wire form is produced by the crypto layer.
type Token struct {
	// JTI is the unique token identifier, used by the revocation denylist.
	JTI string `json:"jti"`

	// SubjectID is the sub claim: a user id, or the client id for tokens
	// minted via the client_credentials grant.
	SubjectID string `json:"subject_id"`

	// ClientID is the audience the token is bound to.
	ClientID string `json:"client_id"`

	// Use is the type marker distinguishing access, id, and refresh tokens.
	// Every verification path checks it.
	Use constants.TokenUse `json:"token_use"`

	// Scope is the granted scope set, space-delimited.
	Scope string `json:"scope"`

	Issuer    string    `json:"issuer"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is past its expiry.
func (t *Token) IsExpired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}
