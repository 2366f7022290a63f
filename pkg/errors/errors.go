// Package errors defines structured error types for the authorization server.
// Every error carries an OAuth 2.0 error code and the HTTP status it maps to,
// so handlers can render RFC 6749 error responses without inspecting internals.
package errors

import (
	"fmt"
	"net/http"

	"github.com/wangov/sso/pkg/constants"
)

// OAuthError is a structured error with an OAuth 2.0 error code, an HTTP
// status, and optional metadata for logging.
type OAuthError interface {
	error

	// Code returns the OAuth 2.0 error code.
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code for the error response.
	HTTPStatus() int

	// Description returns the human-readable error_description.
	Description() string

	// Unwrap returns the underlying cause, if any.
	Unwrap() error

	// WithCause attaches a cause error to the chain.
	WithCause(cause error) OAuthError

	// WithMetadata attaches context metadata for logging. Metadata is never
	// rendered to clients.
	WithMetadata(key string, value interface{}) OAuthError

	// Metadata returns all attached metadata.
	Metadata() map[string]interface{}
}

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) WithCause(cause error) OAuthError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) OAuthError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates an OAuthError with explicit code, status, and messages.
func NewError(code constants.ErrorCode, httpStatus int, description, message string) OAuthError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ErrInvalidRequest creates an invalid_request error (400).
func ErrInvalidRequest(message string) OAuthError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed.",
		message,
	)
}

// ErrInvalidClient creates an invalid_client error (401). The description is
// deliberately uniform: it never reveals whether the id, the secret, or the
// redirect URI failed, to avoid client enumeration.
func ErrInvalidClient(message string) OAuthError {
	return NewError(
		constants.ErrCodeInvalidClient,
		http.StatusUnauthorized,
		"Client authentication failed.",
		message,
	)
}

// ErrInvalidGrant creates an invalid_grant error (401).
func ErrInvalidGrant(message string) OAuthError {
	return NewError(
		constants.ErrCodeInvalidGrant,
		http.StatusUnauthorized,
		"The provided authorization grant or refresh token is invalid, expired, revoked, or was issued to another client.",
		message,
	)
}

// ErrUnsupportedGrantType creates an unsupported_grant_type error (400).
func ErrUnsupportedGrantType(grantType string) OAuthError {
	return NewError(
		constants.ErrCodeUnsupportedGrantType,
		http.StatusBadRequest,
		"The authorization grant type is not supported by the authorization server.",
		fmt.Sprintf("unsupported grant_type %q", grantType),
	).WithMetadata("grant_type", grantType)
}

// ErrUnsupportedResponseType creates an unsupported_response_type error (400).
func ErrUnsupportedResponseType(responseType string) OAuthError {
	return NewError(
		constants.ErrCodeUnsupportedResponse,
		http.StatusBadRequest,
		"The authorization server does not support obtaining an authorization using this response type.",
		fmt.Sprintf("unsupported response_type %q", responseType),
	).WithMetadata("response_type", responseType)
}

// ErrInsufficientScope creates an insufficient_scope error (403).
func ErrInsufficientScope(message string) OAuthError {
	return NewError(
		constants.ErrCodeInsufficientScope,
		http.StatusForbidden,
		"The requested scope exceeds the scope granted to the client.",
		message,
	)
}

// ErrInvalidScope creates an invalid_scope error (400).
func ErrInvalidScope(message string) OAuthError {
	return NewError(
		constants.ErrCodeInvalidScope,
		http.StatusBadRequest,
		"The requested scope is invalid, unknown, or malformed.",
		message,
	)
}

// ErrInvalidRedirectURI creates an error for a redirect_uri that does not
// exactly match the registration (401). Handlers must render this directly
// and never redirect, since the target URI itself is unverified.
func ErrInvalidRedirectURI(message string) OAuthError {
	return NewError(
		constants.ErrCodeInvalidClient,
		http.StatusUnauthorized,
		"The redirect_uri does not match the registered callback URL.",
		message,
	)
}

// ErrAccessDenied creates an access_denied error (403).
func ErrAccessDenied(message string) OAuthError {
	return NewError(
		constants.ErrCodeAccessDenied,
		http.StatusForbidden,
		"The resource owner or authorization server denied the request.",
		message,
	)
}

// ErrServerError creates a server_error error (500).
func ErrServerError(message string) OAuthError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"The authorization server encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ErrMissingParameter creates an invalid_request error for a missing
// required parameter.
func ErrMissingParameter(param string) OAuthError {
	return ErrInvalidRequest(fmt.Sprintf("missing required parameter: %s", param)).
		WithMetadata("parameter", param)
}

// ErrTokenExpired creates an invalid_grant error for an expired token.
func ErrTokenExpired(tokenUse string) OAuthError {
	return ErrInvalidGrant(fmt.Sprintf("%s token has expired", tokenUse)).
		WithMetadata("token_use", tokenUse)
}

// ErrTokenRevoked creates an invalid_grant error for a revoked token.
func ErrTokenRevoked(jti string) OAuthError {
	return ErrInvalidGrant("token has been revoked").
		WithMetadata("jti", jti)
}

// ErrTokenTypeMismatch creates an invalid_grant error for a token presented
// on a verification path expecting a different type marker.
func ErrTokenTypeMismatch(expected, actual string) OAuthError {
	return ErrInvalidGrant(fmt.Sprintf("expected %s token, got %s token", expected, actual)).
		WithMetadata("expected_use", expected).
		WithMetadata("actual_use", actual)
}

// AsOAuthError attempts to cast an error to OAuthError.
func AsOAuthError(err error) (OAuthError, bool) {
	oe, ok := err.(OAuthError)
	return oe, ok
}

// WrapError wraps a generic error into an OAuthError with the given code.
func WrapError(err error, code constants.ErrorCode, message string) OAuthError {
	var httpStatus int
	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeUnsupportedGrantType,
		constants.ErrCodeUnsupportedResponse, constants.ErrCodeInvalidScope:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeInvalidClient, constants.ErrCodeInvalidGrant:
		httpStatus = http.StatusUnauthorized
	case constants.ErrCodeInsufficientScope, constants.ErrCodeAccessDenied:
		httpStatus = http.StatusForbidden
	case constants.ErrCodeTemporarilyUnavailable:
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusInternalServerError
	}
	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// ErrorResponse is the JSON body for OAuth error responses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ToErrorResponse converts any error to an ErrorResponse. Non-OAuthError
// values collapse to a generic server_error so internal detail never leaks.
func ToErrorResponse(err error) *ErrorResponse {
	if oe, ok := AsOAuthError(err); ok {
		return &ErrorResponse{
			Error:            string(oe.Code()),
			ErrorDescription: oe.Description(),
		}
	}
	return &ErrorResponse{
		Error:            string(constants.ErrCodeServerError),
		ErrorDescription: "An unexpected error occurred",
	}
}

// HTTPStatusOf returns the HTTP status for an error, defaulting to 500.
func HTTPStatusOf(err error) int {
	if oe, ok := AsOAuthError(err); ok {
		return oe.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ShouldLogError reports whether an error warrants server-side logging.
// Client errors (4xx) are expected protocol outcomes and stay out of the
// error log.
func ShouldLogError(err error) bool {
	if oe, ok := AsOAuthError(err); ok {
		return oe.HTTPStatus() >= 500
	}
	return true
}
