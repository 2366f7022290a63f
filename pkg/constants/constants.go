// Package constants defines shared constants for the authorization server:
// OAuth 2.0 error codes, grant and response types, token lifetimes, and
// context keys used across layers.
package constants

import "time"

// ErrorCode is an OAuth 2.0 error code as defined by RFC 6749 §5.2.
type ErrorCode string

const (
	ErrCodeInvalidRequest        ErrorCode = "invalid_request"
	ErrCodeInvalidClient         ErrorCode = "invalid_client"
	ErrCodeInvalidGrant          ErrorCode = "invalid_grant"
	ErrCodeUnauthorizedClient    ErrorCode = "unauthorized_client"
	ErrCodeUnsupportedGrantType  ErrorCode = "unsupported_grant_type"
	ErrCodeUnsupportedResponse   ErrorCode = "unsupported_response_type"
	ErrCodeInvalidScope          ErrorCode = "invalid_scope"
	ErrCodeInsufficientScope     ErrorCode = "insufficient_scope"
	ErrCodeAccessDenied          ErrorCode = "access_denied"
	ErrCodeServerError           ErrorCode = "server_error"
	ErrCodeTemporarilyUnavailable ErrorCode = "temporarily_unavailable"
)

// GrantType identifies an OAuth 2.0 grant at the token endpoint.
type GrantType string

const (
	GrantTypeAuthorizationCode GrantType = "authorization_code"
	GrantTypeRefreshToken      GrantType = "refresh_token"
	GrantTypeClientCredentials GrantType = "client_credentials"
)

// ResponseType identifies a supported authorization endpoint response type.
type ResponseType string

const (
	ResponseTypeCode    ResponseType = "code"
	ResponseTypeToken   ResponseType = "token"
	ResponseTypeIDToken ResponseType = "id_token"
)

// TokenUse is the type marker embedded in every signed token. Verification
// paths must check it so a refresh token is never accepted where an access
// token is expected, and vice versa.
type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseID      TokenUse = "id"
	TokenUseRefresh TokenUse = "refresh"
)

// Token and grant lifetimes. ExpiresIn values reported to callers are derived
// from these same constants so the reported window always matches the token.
const (
	AuthorizationCodeTTL = 10 * time.Minute
	AccessTokenTTL       = 1 * time.Hour
	IDTokenTTL           = 1 * time.Hour
	RefreshTokenTTL      = 720 * time.Hour
	PendingAuthTTL       = 15 * time.Minute
)

// ScopeOpenID is the scope that triggers ID token issuance.
const ScopeOpenID = "openid"

// AudienceAPI is the audience claim for client-bound tokens issued via the
// client_credentials grant.
const AudienceAPI = "api"

// ContextKey is a typed key for request-scoped context values.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyClientID  ContextKey = "client_id"
	ContextKeySubjectID ContextKey = "subject_id"
)

// AuditEventType classifies audit log entries.
type AuditEventType string

const (
	AuditEventAuthorizationGranted AuditEventType = "authorization.granted"
	AuditEventAuthorizationDenied  AuditEventType = "authorization.denied"
	AuditEventTokenIssued          AuditEventType = "token.issued"
	AuditEventTokenRefreshed       AuditEventType = "token.refreshed"
	AuditEventTokenRevoked         AuditEventType = "token.revoked"
	AuditEventClientAuthFailed     AuditEventType = "client.auth_failed"
)

// LogLevel controls logger verbosity.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)
