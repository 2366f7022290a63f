package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

// TokenService mints and verifies the server's tokens. Every issued token
// carries iss, aud, a unique JTI, and the token_use type marker; every
// verification checks signature, expiry, type marker, and the revocation
// denylist.
type TokenService interface {
	// IssueAccessToken mints a signed access token for a subject, bound to
	// the client audience.
	IssueAccessToken(ctx context.Context, subjectID, clientID, scope string) (string, *models.Token, error)

	// IssueIDToken mints a signed ID token carrying the subject's profile
	// claims. The nonce from the authorization request is echoed when set.
	IssueIDToken(ctx context.Context, subject *models.Subject, clientID, nonce string) (string, *models.Token, error)

	// IssueRefreshToken mints a signed refresh token.
	IssueRefreshToken(ctx context.Context, subjectID, clientID, scope string) (string, *models.Token, error)

	// Verify validates a signed token and enforces the expected type
	// marker. A revoked JTI fails verification.
	Verify(ctx context.Context, tokenString string, expectedUse constants.TokenUse) (*models.Token, error)

	// AccessTokenTTL returns the validity window reported as expires_in.
	AccessTokenTTL() time.Duration
}

type tokenService struct {
	crypto          CryptoService
	denylist        TokenDenylist
	log             logger.Logger
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewTokenService creates a TokenService signing for the given issuer.
func NewTokenService(
	crypto CryptoService,
	denylist TokenDenylist,
	issuer string,
	accessTokenTTL, refreshTokenTTL time.Duration,
	log logger.Logger,
) TokenService {
	return &tokenService{
		crypto:          crypto,
		denylist:        denylist,
		log:             log.WithComponent("token_service"),
		issuer:          issuer,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (s *tokenService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *tokenService) IssueAccessToken(ctx context.Context, subjectID, clientID, scope string) (string, *models.Token, error) {
	return s.issue(ctx, subjectID, clientID, scope, constants.TokenUseAccess, s.accessTokenTTL, nil, "")
}

func (s *tokenService) IssueRefreshToken(ctx context.Context, subjectID, clientID, scope string) (string, *models.Token, error) {
	return s.issue(ctx, subjectID, clientID, scope, constants.TokenUseRefresh, s.refreshTokenTTL, nil, "")
}

func (s *tokenService) IssueIDToken(ctx context.Context, subject *models.Subject, clientID, nonce string) (string, *models.Token, error) {
	return s.issue(ctx, subject.ID, clientID, "", constants.TokenUseID, constants.IDTokenTTL, subject, nonce)
}

func (s *tokenService) issue(
	ctx context.Context,
	subjectID, clientID, scope string,
	use constants.TokenUse,
	ttl time.Duration,
	subject *models.Subject,
	nonce string,
) (string, *models.Token, error) {
	now := time.Now().UTC()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			Audience:  jwt.ClaimStrings{clientID},
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenUse: use,
		Scope:    scope,
		Nonce:    nonce,
	}
	if subject != nil {
		claims.Name = subject.FullName()
		claims.GivenName = subject.FirstName
		claims.FamilyName = subject.LastName
		claims.Email = subject.Email
		claims.Birthdate = subject.Birthdate
		claims.Gender = subject.Gender
	}

	signed, err := s.crypto.Sign(ctx, claims)
	if err != nil {
		s.log.Error(ctx, "token signing failed", err, logger.String("token_use", string(use)))
		return "", nil, errors.ErrServerError("token signing failed").WithCause(err)
	}

	return signed, &models.Token{
		JTI:       claims.ID,
		SubjectID: subjectID,
		ClientID:  clientID,
		Use:       use,
		Scope:     scope,
		Issuer:    s.issuer,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (s *tokenService) Verify(ctx context.Context, tokenString string, expectedUse constants.TokenUse) (*models.Token, error) {
	claims, err := s.crypto.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if expectedUse != "" && claims.TokenUse != expectedUse {
		return nil, errors.ErrTokenTypeMismatch(string(expectedUse), string(claims.TokenUse))
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Error(ctx, "denylist check failed", err, logger.String("jti", claims.ID))
		return nil, errors.ErrServerError("revocation check failed").WithCause(err)
	}
	if revoked {
		return nil, errors.ErrTokenRevoked(claims.ID)
	}

	token := &models.Token{
		JTI:       claims.ID,
		SubjectID: claims.Subject,
		Use:       claims.TokenUse,
		Scope:     claims.Scope,
		Issuer:    claims.Issuer,
	}
	if len(claims.Audience) > 0 {
		token.ClientID = claims.Audience[0]
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	return token, nil
}
