package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

type fakeClientRepo struct {
	clients map[string]*models.Client
	calls   int
}

func (r *fakeClientRepo) FindByClientID(_ context.Context, clientID string) (*models.Client, error) {
	r.calls++
	return r.clients[clientID], nil
}

func testLogger() logger.Logger {
	return logger.NewLogger(constants.LogLevelFatal, io.Discard)
}

func hashSecret(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestRegistry(t *testing.T) (ClientRegistry, *fakeClientRepo) {
	t.Helper()
	repo := &fakeClientRepo{clients: map[string]*models.Client{
		"svc-acme": {
			ID:            "svc-acme",
			Name:          "Acme Portal",
			SecretHash:    hashSecret(t, "s3cret"),
			RedirectURI:   "https://acme.example.com/callback",
			AllowedScopes: []string{"openid", "profile"},
			Status:        models.ClientStatusActive,
		},
		"svc-suspended": {
			ID:          "svc-suspended",
			SecretHash:  hashSecret(t, "s3cret"),
			RedirectURI: "https://suspended.example.com/cb",
			Status:      models.ClientStatusSuspended,
		},
	}}
	return NewClientRegistry(repo, testLogger()), repo
}

func assertInvalidClient(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	oe, ok := errors.AsOAuthError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeInvalidClient, oe.Code())
	assert.Equal(t, "Client authentication failed.", oe.Description())
}

func TestValidateClient(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	client, err := registry.ValidateClient(ctx, "svc-acme", "")
	require.NoError(t, err)
	assert.Equal(t, "svc-acme", client.ID)
}

func TestValidateClient_FailuresAreIndistinguishable(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	_, unknownErr := registry.ValidateClient(ctx, "svc-nope", "")
	assertInvalidClient(t, unknownErr)

	_, suspendedErr := registry.ValidateClient(ctx, "svc-suspended", "s3cret")
	assertInvalidClient(t, suspendedErr)

	_, badSecretErr := registry.ValidateClient(ctx, "svc-acme", "wrong")
	assertInvalidClient(t, badSecretErr)

	_, missingIDErr := registry.ValidateClient(ctx, "", "")
	assertInvalidClient(t, missingIDErr)
}

func TestAuthenticate_RequiresSecret(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Authenticate(context.Background(), "svc-acme", "")
	assertInvalidClient(t, err)

	client, err := registry.Authenticate(context.Background(), "svc-acme", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "svc-acme", client.ID)
}

func TestValidateRedirectURI_ExactMatchOnly(t *testing.T) {
	registry, _ := newTestRegistry(t)
	client, err := registry.ValidateClient(context.Background(), "svc-acme", "")
	require.NoError(t, err)

	assert.NoError(t, registry.ValidateRedirectURI(client, "https://acme.example.com/callback"))

	for name, uri := range map[string]string{
		"trailing slash": "https://acme.example.com/callback/",
		"http downgrade": "http://acme.example.com/callback",
		"explicit port":  "https://acme.example.com:443/callback",
		"different host": "https://evil.example.com/callback",
		"query appended": "https://acme.example.com/callback?x=1",
		"uppercase host": "https://ACME.example.com/callback",
	} {
		t.Run(name, func(t *testing.T) {
			err := registry.ValidateRedirectURI(client, uri)
			require.Error(t, err)
			oe, ok := errors.AsOAuthError(err)
			require.True(t, ok)
			assert.Equal(t, constants.ErrCodeInvalidClient, oe.Code())
		})
	}
}

func TestValidateClient_CachesLookups(t *testing.T) {
	registry, repo := newTestRegistry(t)
	ctx := context.Background()

	_, err := registry.ValidateClient(ctx, "svc-acme", "")
	require.NoError(t, err)
	_, err = registry.ValidateClient(ctx, "svc-acme", "")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
}
