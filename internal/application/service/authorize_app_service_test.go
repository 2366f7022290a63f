package service

import (
	"context"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/pkg/constants"
)

func validAuthorizeRequest() *dto.AuthorizeRequest {
	return &dto.AuthorizeRequest{
		ClientID:     "svc-acme",
		RedirectURI:  "https://acme.example.com/callback",
		ResponseType: "code",
		Scope:        "openid profile",
		State:        "xyz-123",
		Nonce:        "n-0S6_WzA2Mj",
	}
}

func TestBeginAuthorization(t *testing.T) {
	f := newFixture(t)

	loginURL, err := f.authorize.BeginAuthorization(context.Background(), validAuthorizeRequest())
	require.NoError(t, err)

	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "sso.gov.example", parsed.Host)
	assert.Equal(t, "/login", parsed.Path)

	requestID := parsed.Query().Get("request_id")
	require.NotEmpty(t, requestID)

	// The pending request is retrievable exactly once under that id.
	pending, err := f.pending.Consume(context.Background(), requestID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "svc-acme", pending.ClientID)
	assert.Equal(t, "xyz-123", pending.State)
	assert.Equal(t, "n-0S6_WzA2Mj", pending.Nonce)
}

func TestBeginAuthorization_MissingParameters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mutations := map[string]func(*dto.AuthorizeRequest){
		"client_id":     func(r *dto.AuthorizeRequest) { r.ClientID = "" },
		"redirect_uri":  func(r *dto.AuthorizeRequest) { r.RedirectURI = "" },
		"response_type": func(r *dto.AuthorizeRequest) { r.ResponseType = "" },
		"scope":         func(r *dto.AuthorizeRequest) { r.Scope = "" },
	}
	for param, mutate := range mutations {
		t.Run(param, func(t *testing.T) {
			req := validAuthorizeRequest()
			mutate(req)
			_, err := f.authorize.BeginAuthorization(ctx, req)
			requireOAuthCode(t, err, constants.ErrCodeInvalidRequest)
		})
	}
}

func TestBeginAuthorization_UnsupportedResponseType(t *testing.T) {
	f := newFixture(t)

	req := validAuthorizeRequest()
	req.ResponseType = "token"
	_, err := f.authorize.BeginAuthorization(context.Background(), req)
	requireOAuthCode(t, err, constants.ErrCodeUnsupportedResponse)
}

func TestBeginAuthorization_UnknownClient(t *testing.T) {
	f := newFixture(t)

	req := validAuthorizeRequest()
	req.ClientID = "svc-nope"
	_, err := f.authorize.BeginAuthorization(context.Background(), req)
	requireOAuthCode(t, err, constants.ErrCodeInvalidClient)
}

func TestBeginAuthorization_RedirectMismatch(t *testing.T) {
	f := newFixture(t)

	req := validAuthorizeRequest()
	req.RedirectURI = "https://acme.example.com/callback/"
	_, err := f.authorize.BeginAuthorization(context.Background(), req)
	requireOAuthCode(t, err, constants.ErrCodeInvalidClient)
}

func TestBeginAuthorization_UnregisteredScope(t *testing.T) {
	f := newFixture(t)

	req := validAuthorizeRequest()
	req.Scope = "openid admin"
	_, err := f.authorize.BeginAuthorization(context.Background(), req)
	requireOAuthCode(t, err, constants.ErrCodeInvalidScope)
}

var codePattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestCompleteAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loginURL, err := f.authorize.BeginAuthorization(ctx, validAuthorizeRequest())
	require.NoError(t, err)
	requestID := mustQueryParam(t, loginURL, "request_id")

	redirectURL, err := f.authorize.CompleteAuthorization(ctx, requestID, "subj-1", dto.RequestInfo{IP: "10.0.0.1"})
	require.NoError(t, err)

	parsed, err := url.Parse(redirectURL)
	require.NoError(t, err)
	assert.Equal(t, "acme.example.com", parsed.Host)
	assert.Equal(t, "/callback", parsed.Path)

	code := parsed.Query().Get("code")
	assert.True(t, codePattern.MatchString(code), "code must be 32 hex characters, got %q", code)
	assert.Equal(t, "xyz-123", parsed.Query().Get("state"), "state must round-trip unchanged")

	// The grant behind the code carries the request's bindings.
	grant, err := f.grants.Consume(ctx, code)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, "subj-1", grant.SubjectID)
	assert.Equal(t, "svc-acme", grant.ClientID)
	assert.Equal(t, "https://acme.example.com/callback", grant.RedirectURI)
	assert.Equal(t, "openid profile", grant.Scope)
	assert.Equal(t, "n-0S6_WzA2Mj", grant.Nonce)

	assert.Len(t, f.audit.byAction(constants.AuditEventAuthorizationGranted), 1)
}

func TestCompleteAuthorization_RequestIDIsOneShot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loginURL, err := f.authorize.BeginAuthorization(ctx, validAuthorizeRequest())
	require.NoError(t, err)
	requestID := mustQueryParam(t, loginURL, "request_id")

	_, err = f.authorize.CompleteAuthorization(ctx, requestID, "subj-1", dto.RequestInfo{})
	require.NoError(t, err)

	_, err = f.authorize.CompleteAuthorization(ctx, requestID, "subj-1", dto.RequestInfo{})
	requireOAuthCode(t, err, constants.ErrCodeInvalidRequest)
}

func TestCompleteAuthorization_UnknownRequestID(t *testing.T) {
	f := newFixture(t)

	_, err := f.authorize.CompleteAuthorization(context.Background(), "req-never-issued", "subj-1", dto.RequestInfo{})
	requireOAuthCode(t, err, constants.ErrCodeInvalidRequest)
}

func TestCompleteAuthorization_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loginURL, err := f.authorize.BeginAuthorization(ctx, validAuthorizeRequest())
	require.NoError(t, err)
	requestID := mustQueryParam(t, loginURL, "request_id")

	_, err = f.authorize.CompleteAuthorization(ctx, requestID, "subj-nope", dto.RequestInfo{})
	requireOAuthCode(t, err, constants.ErrCodeAccessDenied)
}

func TestCompleteAuthorization_MissingArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.authorize.CompleteAuthorization(ctx, "", "subj-1", dto.RequestInfo{})
	requireOAuthCode(t, err, constants.ErrCodeInvalidRequest)

	_, err = f.authorize.CompleteAuthorization(ctx, "req-1", "", dto.RequestInfo{})
	requireOAuthCode(t, err, constants.ErrCodeInvalidRequest)
}

func mustQueryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	value := parsed.Query().Get(key)
	require.NotEmpty(t, value)
	return value
}
