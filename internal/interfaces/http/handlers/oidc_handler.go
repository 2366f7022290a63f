package handlers

import (
	"encoding/base64"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/internal/application/service"
	"github.com/wangov/sso/internal/infrastructure/crypto"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

// OIDCHandler serves the OpenID Connect surface: userinfo, the discovery
// document, and the JWKS.
type OIDCHandler struct {
	tokens service.TokenAppService
	keys   *crypto.KeyManager
	issuer string
	log    logger.Logger
}

// NewOIDCHandler creates an OIDCHandler publishing for the given issuer.
func NewOIDCHandler(tokens service.TokenAppService, keys *crypto.KeyManager, issuer string, log logger.Logger) *OIDCHandler {
	return &OIDCHandler{
		tokens: tokens,
		keys:   keys,
		issuer: issuer,
		log:    log.WithComponent("oidc_handler"),
	}
}

// UserInfo handles GET /userinfo with a Bearer access token.
func (h *OIDCHandler) UserInfo(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", `Bearer realm="userinfo"`)
		dto.SendError(c, errors.ErrInvalidRequest("missing bearer token"))
		return
	}

	claims, err := h.tokens.UserInfo(c.Request.Context(), token)
	if err != nil {
		c.Header("WWW-Authenticate", `Bearer realm="userinfo", error="invalid_token"`)
		dto.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

// Discovery handles GET /.well-known/openid-configuration.
func (h *OIDCHandler) Discovery(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"issuer":                                h.issuer,
		"authorization_endpoint":                h.issuer + "/authorize",
		"token_endpoint":                        h.issuer + "/token",
		"userinfo_endpoint":                     h.issuer + "/userinfo",
		"revocation_endpoint":                   h.issuer + "/token/revoke",
		"introspection_endpoint":                h.issuer + "/token/validate",
		"jwks_uri":                              h.issuer + "/.well-known/jwks.json",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code", "refresh_token", "client_credentials"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"scopes_supported":                      []string{"openid", "profile", "email"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post", "client_secret_basic"},
		"claims_supported": []string{
			"sub", "name", "given_name", "family_name", "email", "birthdate", "gender",
		},
	})
}

// JWKS handles GET /.well-known/jwks.json, publishing the verification key.
func (h *OIDCHandler) JWKS(c *gin.Context) {
	pub := h.keys.PublicKey()
	c.JSON(http.StatusOK, gin.H{
		"keys": []gin.H{
			{
				"kty": "RSA",
				"use": "sig",
				"alg": "RS256",
				"kid": h.keys.KeyID(),
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	})
}
