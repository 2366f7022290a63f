package models

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/wangov/sso/pkg/constants"
)

// Claims is the custom claims set signed into every token. It embeds the
// registered claims and adds the token_use type marker plus scope. ID tokens
// additionally carry the OIDC profile claims and the request nonce.
type Claims struct {
	jwt.RegisteredClaims

	// TokenUse distinguishes access, id, and refresh tokens. Checked on
	// every verification path.
	TokenUse constants.TokenUse `json:"token_use"`

	// Scope is the granted scope set, space-delimited. Empty on ID tokens.
	Scope string `json:"scope,omitempty"`

	// Nonce is echoed from the authorization request on ID tokens.
	Nonce string `json:"nonce,omitempty"`

	// OIDC standard profile claims, populated on ID tokens only.
	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Birthdate  string `json:"birthdate,omitempty"`
	Gender     string `json:"gender,omitempty"`
}
