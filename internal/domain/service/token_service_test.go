package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/internal/infrastructure/crypto"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

const testIssuer = "https://sso.gov.example"

type memoryDenylist struct {
	revoked map[string]time.Time
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *memoryDenylist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	d.revoked[jti] = expiresAt
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := d.revoked[jti]
	return ok, nil
}

func quietLogger() logger.Logger {
	return logger.NewLogger(constants.LogLevelFatal, io.Discard)
}

func newTestTokenService(t *testing.T) (service.TokenService, *memoryDenylist) {
	t.Helper()
	keys, err := crypto.NewKeyManager("test-key", "")
	require.NoError(t, err)

	denylist := newMemoryDenylist()
	svc := service.NewTokenService(
		crypto.NewJWTManager(keys, quietLogger()),
		denylist,
		testIssuer,
		time.Hour, 720*time.Hour,
		quietLogger(),
	)
	return svc, denylist
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	signed, meta, err := svc.IssueAccessToken(ctx, "subj-1", "svc-acme", "openid profile")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.Equal(t, constants.TokenUseAccess, meta.Use)
	assert.NotEmpty(t, meta.JTI)

	token, err := svc.Verify(ctx, signed, constants.TokenUseAccess)
	require.NoError(t, err)
	assert.Equal(t, "subj-1", token.SubjectID)
	assert.Equal(t, "svc-acme", token.ClientID)
	assert.Equal(t, "openid profile", token.Scope)
	assert.Equal(t, testIssuer, token.Issuer)
	assert.Equal(t, meta.JTI, token.JTI)
}

func TestVerify_RejectsTypeConfusion(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	refresh, _, err := svc.IssueRefreshToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)

	// A refresh token must never pass where an access token is expected.
	_, err = svc.Verify(ctx, refresh, constants.TokenUseAccess)
	require.Error(t, err)
	oe, ok := errors.AsOAuthError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeInvalidGrant, oe.Code())

	// And the other direction.
	access, _, err := svc.IssueAccessToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, access, constants.TokenUseRefresh)
	require.Error(t, err)
}

func TestVerify_AnyUseWhenUnspecified(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	refresh, _, err := svc.IssueRefreshToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)

	token, err := svc.Verify(ctx, refresh, "")
	require.NoError(t, err)
	assert.Equal(t, constants.TokenUseRefresh, token.Use)
}

func TestVerify_RejectsRevokedToken(t *testing.T) {
	svc, denylist := newTestTokenService(t)
	ctx := context.Background()

	signed, meta, err := svc.IssueAccessToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, signed, constants.TokenUseAccess)
	require.NoError(t, err)

	require.NoError(t, denylist.Revoke(ctx, meta.JTI, meta.ExpiresAt))

	_, err = svc.Verify(ctx, signed, constants.TokenUseAccess)
	require.Error(t, err)
	oe, ok := errors.AsOAuthError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeInvalidGrant, oe.Code())
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	keys, err := crypto.NewKeyManager("test-key", "")
	require.NoError(t, err)

	// A service whose access tokens are already expired at issuance.
	svc := service.NewTokenService(
		crypto.NewJWTManager(keys, quietLogger()),
		newMemoryDenylist(),
		testIssuer,
		-time.Minute, 720*time.Hour,
		quietLogger(),
	)
	ctx := context.Background()

	signed, _, err := svc.IssueAccessToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, signed, constants.TokenUseAccess)
	require.Error(t, err)
	oe, ok := errors.AsOAuthError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeInvalidGrant, oe.Code())
}

func TestVerify_RejectsGarbage(t *testing.T) {
	svc, _ := newTestTokenService(t)

	_, err := svc.Verify(context.Background(), "not-a-jwt", constants.TokenUseAccess)
	require.Error(t, err)

	_, err = svc.Verify(context.Background(), "", constants.TokenUseAccess)
	require.Error(t, err)
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	svc, _ := newTestTokenService(t)
	other, _ := newTestTokenService(t)
	ctx := context.Background()

	signed, _, err := other.IssueAccessToken(ctx, "subj-1", "svc-acme", "openid")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, signed, constants.TokenUseAccess)
	require.Error(t, err)
}

func TestIssueIDToken_CarriesProfileAndNonce(t *testing.T) {
	keys, err := crypto.NewKeyManager("test-key", "")
	require.NoError(t, err)
	cryptoSvc := crypto.NewJWTManager(keys, quietLogger())
	svc := service.NewTokenService(cryptoSvc, newMemoryDenylist(), testIssuer, time.Hour, 720*time.Hour, quietLogger())
	ctx := context.Background()

	subject := &models.Subject{
		ID:        "subj-1",
		FirstName: "Aminata",
		LastName:  "Kamara",
		Email:     "aminata@example.com",
		Birthdate: "1990-04-12",
		Gender:    "female",
	}

	signed, meta, err := svc.IssueIDToken(ctx, subject, "svc-acme", "n-0S6_WzA2Mj")
	require.NoError(t, err)
	assert.Equal(t, constants.TokenUseID, meta.Use)

	claims, err := cryptoSvc.Verify(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, "Aminata Kamara", claims.Name)
	assert.Equal(t, "aminata@example.com", claims.Email)
	assert.Equal(t, "n-0S6_WzA2Mj", claims.Nonce)
	assert.Equal(t, constants.TokenUseID, claims.TokenUse)
	assert.Equal(t, []string{"svc-acme"}, []string(claims.Audience))
}

func TestAccessTokenTTL(t *testing.T) {
	svc, _ := newTestTokenService(t)
	assert.Equal(t, time.Hour, svc.AccessTokenTTL())
}
