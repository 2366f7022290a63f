package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangov/sso/pkg/constants"
)

func TestErrorCodesAndStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        OAuthError
		wantCode   constants.ErrorCode
		wantStatus int
	}{
		{"invalid request", ErrInvalidRequest("x"), constants.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"invalid client", ErrInvalidClient("x"), constants.ErrCodeInvalidClient, http.StatusUnauthorized},
		{"invalid grant", ErrInvalidGrant("x"), constants.ErrCodeInvalidGrant, http.StatusUnauthorized},
		{"unsupported grant type", ErrUnsupportedGrantType("password"), constants.ErrCodeUnsupportedGrantType, http.StatusBadRequest},
		{"unsupported response type", ErrUnsupportedResponseType("token"), constants.ErrCodeUnsupportedResponse, http.StatusBadRequest},
		{"insufficient scope", ErrInsufficientScope("x"), constants.ErrCodeInsufficientScope, http.StatusForbidden},
		{"invalid scope", ErrInvalidScope("x"), constants.ErrCodeInvalidScope, http.StatusBadRequest},
		{"redirect mismatch", ErrInvalidRedirectURI("x"), constants.ErrCodeInvalidClient, http.StatusUnauthorized},
		{"server error", ErrServerError("x"), constants.ErrCodeServerError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code())
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
		})
	}
}

func TestInvalidClientDescriptionIsUniform(t *testing.T) {
	// The rendered description must not reveal which part of the
	// credential check failed.
	missing := ErrInvalidClient("missing client_id")
	badSecret := ErrInvalidClient("client secret mismatch")

	assert.Equal(t, missing.Description(), badSecret.Description())
	assert.NotContains(t, missing.Description(), "client_id")
	assert.NotContains(t, badSecret.Description(), "secret")
}

func TestWithCauseAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrServerError("store unavailable").WithCause(cause)

	assert.Equal(t, cause, err.Unwrap())
}

func TestWithMetadata(t *testing.T) {
	err := ErrInvalidGrant("bad code").
		WithMetadata("client_id", "svc-acme").
		WithMetadata("attempt", 2)

	md := err.Metadata()
	assert.Equal(t, "svc-acme", md["client_id"])
	assert.Equal(t, 2, md["attempt"])
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrInvalidGrant("internal detail about the failure"))
	assert.Equal(t, "invalid_grant", resp.Error)
	assert.NotContains(t, resp.ErrorDescription, "internal detail")
}

func TestToErrorResponse_GenericError(t *testing.T) {
	resp := ToErrorResponse(fmt.Errorf("pq: relation does not exist"))

	require.NotNil(t, resp)
	assert.Equal(t, "server_error", resp.Error)
	assert.NotContains(t, resp.ErrorDescription, "pq:")
}

func TestHTTPStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatusOf(ErrInvalidClient("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(fmt.Errorf("boom")))
}

func TestShouldLogError(t *testing.T) {
	assert.False(t, ShouldLogError(ErrInvalidGrant("expected outcome")))
	assert.True(t, ShouldLogError(ErrServerError("unexpected")))
	assert.True(t, ShouldLogError(fmt.Errorf("unclassified")))
}
