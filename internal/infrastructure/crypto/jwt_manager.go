package crypto

import (
	"context"
	stderrors "errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

type jwtManager struct {
	keys *KeyManager
	log  logger.Logger
}

// NewJWTManager creates the RS256 CryptoService implementation.
func NewJWTManager(keys *KeyManager, log logger.Logger) service.CryptoService {
	return &jwtManager{keys: keys, log: log.WithComponent("jwt")}
}

func (m *jwtManager) Sign(ctx context.Context, claims *models.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.keys.KeyID()

	signed, err := token.SignedString(m.keys.PrivateKey())
	if err != nil {
		m.log.Error(ctx, "failed to sign token", err)
		return "", errors.ErrServerError("token signing failed").WithCause(err)
	}
	return signed, nil
}

func (m *jwtManager) Verify(ctx context.Context, tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return m.keys.PublicKey(), nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired("signed").WithCause(err)
		}
		return nil, errors.ErrInvalidGrant("token verification failed").WithCause(err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidGrant("token claims invalid")
	}
	return claims, nil
}
