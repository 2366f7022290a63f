package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
	"github.com/wangov/sso/pkg/utils"
)

// TokenAppService implements the token endpoint and its companion
// validation, revocation, and userinfo operations.
type TokenAppService interface {
	// Exchange dispatches a token request to the handler for its grant
	// type. Unknown grant types fail with unsupported_grant_type.
	Exchange(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error)

	// Introspect reports whether a token is active. Any failure, from a
	// malformed token to an expired signature, yields active:false; this
	// path never errors.
	Introspect(ctx context.Context, tokenString string) *dto.IntrospectionResponse

	// Revoke authenticates the client and places the token on the
	// denylist. Per RFC 7009 an already-invalid token revokes successfully.
	Revoke(ctx context.Context, clientID, clientSecret, tokenString string, info dto.RequestInfo) error

	// UserInfo resolves the subject of a verified access token to its
	// OIDC claims.
	UserInfo(ctx context.Context, accessToken string) (*models.UserInfoClaims, error)
}

// grantHandler handles one grant type. Adding a grant means adding a
// handler and a dispatch entry, not growing a conditional.
type grantHandler interface {
	Handle(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error)
}

type tokenAppService struct {
	handlers map[constants.GrantType]grantHandler
	tokens   domainsvc.TokenService
	clients  domainsvc.ClientRegistry
	denylist domainsvc.TokenDenylist
	subjects repository.SubjectRepository
	audit    domainsvc.AuditService
	log      logger.Logger
}

// NewTokenAppService wires the grant dispatch table and the companion
// operations.
func NewTokenAppService(
	clients domainsvc.ClientRegistry,
	tokens domainsvc.TokenService,
	grants domainsvc.GrantStore,
	denylist domainsvc.TokenDenylist,
	subjects repository.SubjectRepository,
	access repository.ServiceAccessRepository,
	audit domainsvc.AuditService,
	log logger.Logger,
) TokenAppService {
	log = log.WithComponent("token_app_service")
	return &tokenAppService{
		handlers: map[constants.GrantType]grantHandler{
			constants.GrantTypeAuthorizationCode: &authorizationCodeGrant{
				clients:  clients,
				tokens:   tokens,
				grants:   grants,
				subjects: subjects,
				access:   access,
				audit:    audit,
				log:      log,
			},
			constants.GrantTypeRefreshToken: &refreshTokenGrant{
				clients: clients,
				tokens:  tokens,
				audit:   audit,
			},
			constants.GrantTypeClientCredentials: &clientCredentialsGrant{
				clients: clients,
				tokens:  tokens,
				audit:   audit,
			},
		},
		tokens:   tokens,
		clients:  clients,
		denylist: denylist,
		subjects: subjects,
		audit:    audit,
		log:      log,
	}
}

func (s *tokenAppService) Exchange(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error) {
	if req.GrantType == "" {
		return nil, errors.ErrMissingParameter("grant_type")
	}
	handler, ok := s.handlers[constants.GrantType(req.GrantType)]
	if !ok {
		return nil, errors.ErrUnsupportedGrantType(req.GrantType)
	}
	return handler.Handle(ctx, req, info)
}

func (s *tokenAppService) Introspect(ctx context.Context, tokenString string) *dto.IntrospectionResponse {
	if tokenString == "" {
		return &dto.IntrospectionResponse{Active: false}
	}
	token, err := s.tokens.Verify(ctx, tokenString, "")
	if err != nil {
		return &dto.IntrospectionResponse{Active: false}
	}
	return &dto.IntrospectionResponse{
		Active:    true,
		Subject:   token.SubjectID,
		ClientID:  token.ClientID,
		Scope:     token.Scope,
		TokenUse:  string(token.Use),
		ExpiresAt: token.ExpiresAt.Unix(),
		IssuedAt:  token.IssuedAt.Unix(),
	}
}

func (s *tokenAppService) Revoke(ctx context.Context, clientID, clientSecret, tokenString string, info dto.RequestInfo) error {
	client, err := s.clients.Authenticate(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}
	if tokenString == "" {
		return errors.ErrMissingParameter("token")
	}

	token, err := s.tokens.Verify(ctx, tokenString, "")
	if err != nil {
		// Already expired, revoked, or unparseable. Nothing to deny.
		return nil
	}

	if err := s.denylist.Revoke(ctx, token.JTI, token.ExpiresAt); err != nil {
		s.log.Error(ctx, "denylist write failed", err, logger.String("jti", token.JTI))
		return errors.ErrServerError("revocation failed").WithCause(err)
	}

	s.audit.Record(ctx, models.NewAuditEvent(
		constants.AuditEventTokenRevoked, "token", token.JTI, client.ID,
	).WithRequestInfo(info.IP, info.UserAgent).WithMetadata("token_use", string(token.Use)))
	return nil
}

func (s *tokenAppService) UserInfo(ctx context.Context, accessToken string) (*models.UserInfoClaims, error) {
	token, err := s.tokens.Verify(ctx, accessToken, constants.TokenUseAccess)
	if err != nil {
		return nil, err
	}
	subject, err := s.subjects.FindByID(ctx, token.SubjectID)
	if err != nil {
		return nil, errors.ErrServerError("subject lookup failed").WithCause(err)
	}
	if subject == nil {
		return nil, errors.ErrInvalidGrant("token subject no longer exists").
			WithMetadata("subject_id", token.SubjectID)
	}
	return subject.ToUserInfo(), nil
}

// authorizationCodeGrant redeems a one-shot authorization code for a token
// set. Client authentication happens before the code is consumed, so a bad
// credential does not burn the code; every check after consumption burns it.
type authorizationCodeGrant struct {
	clients  domainsvc.ClientRegistry
	tokens   domainsvc.TokenService
	grants   domainsvc.GrantStore
	subjects repository.SubjectRepository
	access   repository.ServiceAccessRepository
	audit    domainsvc.AuditService
	log      logger.Logger
}

func (g *authorizationCodeGrant) Handle(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error) {
	switch {
	case req.Code == "":
		return nil, errors.ErrMissingParameter("code")
	case req.RedirectURI == "":
		return nil, errors.ErrMissingParameter("redirect_uri")
	}

	client, err := g.clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ErrServerError("request aborted").WithCause(err)
	}

	grant, err := g.grants.Consume(ctx, req.Code)
	if err != nil {
		return nil, errors.ErrServerError("grant store unavailable").WithCause(err)
	}
	if grant == nil {
		return nil, errors.ErrInvalidGrant("unknown or already redeemed code")
	}
	if grant.IsExpired() {
		return nil, errors.ErrInvalidGrant("authorization code expired")
	}
	if !grant.BelongsTo(client.ID) {
		return nil, errors.ErrInvalidGrant("code was issued to another client").
			WithMetadata("client_id", client.ID)
	}
	if grant.RedirectURI != req.RedirectURI {
		return nil, errors.ErrInvalidGrant("redirect_uri does not match the authorization request")
	}

	subject, err := g.subjects.FindByID(ctx, grant.SubjectID)
	if err != nil {
		return nil, errors.ErrServerError("subject lookup failed").WithCause(err)
	}
	if subject == nil {
		return nil, errors.ErrInvalidGrant("grant subject no longer exists")
	}

	accessToken, _, err := g.tokens.IssueAccessToken(ctx, subject.ID, client.ID, grant.Scope)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshMeta, err := g.tokens.IssueRefreshToken(ctx, subject.ID, client.ID, grant.Scope)
	if err != nil {
		return nil, err
	}

	var idToken string
	if utils.ScopeContains(grant.Scope, constants.ScopeOpenID) {
		idToken, _, err = g.tokens.IssueIDToken(ctx, subject, client.ID, grant.Nonce)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := g.access.Save(ctx, &models.ServiceAccess{
		ID:             uuid.NewString(),
		SubjectID:      subject.ID,
		ClientID:       client.ID,
		OrganizationID: grant.OrganizationID,
		Scope:          grant.Scope,
		GrantedAt:      now,
		ExpiresAt:      refreshMeta.ExpiresAt,
	}); err != nil {
		// The token set is already minted; record the failure and continue.
		g.log.Error(ctx, "service access record failed", err,
			logger.String("client_id", client.ID),
			logger.String("subject_id", subject.ID))
	}

	g.audit.Record(ctx, models.NewAuditEvent(
		constants.AuditEventTokenIssued, "client", client.ID, subject.ID,
	).WithRequestInfo(info.IP, info.UserAgent).WithMetadata("scope", grant.Scope))

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(g.tokens.AccessTokenTTL().Seconds()),
		RefreshToken: refreshToken,
		IDToken:      idToken,
		Scope:        grant.Scope,
	}, nil
}

// refreshTokenGrant exchanges a valid refresh token for a fresh access
// token. The refresh token itself is not rotated.
type refreshTokenGrant struct {
	clients domainsvc.ClientRegistry
	tokens  domainsvc.TokenService
	audit   domainsvc.AuditService
}

func (g *refreshTokenGrant) Handle(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, errors.ErrMissingParameter("refresh_token")
	}

	client, err := g.clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := g.tokens.Verify(ctx, req.RefreshToken, constants.TokenUseRefresh)
	if err != nil {
		return nil, err
	}
	if refresh.ClientID != client.ID {
		return nil, errors.ErrInvalidGrant("refresh token was issued to another client").
			WithMetadata("client_id", client.ID)
	}

	accessToken, _, err := g.tokens.IssueAccessToken(ctx, refresh.SubjectID, client.ID, refresh.Scope)
	if err != nil {
		return nil, err
	}

	g.audit.Record(ctx, models.NewAuditEvent(
		constants.AuditEventTokenRefreshed, "client", client.ID, refresh.SubjectID,
	).WithRequestInfo(info.IP, info.UserAgent))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(g.tokens.AccessTokenTTL().Seconds()),
		Scope:       refresh.Scope,
	}, nil
}

// clientCredentialsGrant issues a client-bound access token for
// machine-to-machine calls. The subject is the client itself and the
// audience is the API tier rather than a relying party.
type clientCredentialsGrant struct {
	clients domainsvc.ClientRegistry
	tokens  domainsvc.TokenService
	audit   domainsvc.AuditService
}

func (g *clientCredentialsGrant) Handle(ctx context.Context, req *dto.TokenRequest, info dto.RequestInfo) (*dto.TokenResponse, error) {
	client, err := g.clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope == "" {
		scope = utils.JoinScope(client.AllowedScopes)
	} else if !utils.ScopeSubset(utils.ParseScope(scope), client.AllowedScopes) {
		return nil, errors.ErrInsufficientScope("requested scope exceeds client registration").
			WithMetadata("client_id", client.ID).
			WithMetadata("scope", scope)
	}

	accessToken, _, err := g.tokens.IssueAccessToken(ctx, client.ID, constants.AudienceAPI, scope)
	if err != nil {
		return nil, err
	}

	g.audit.Record(ctx, models.NewAuditEvent(
		constants.AuditEventTokenIssued, "client", client.ID, client.ID,
	).WithRequestInfo(info.IP, info.UserAgent).WithMetadata("grant_type", string(constants.GrantTypeClientCredentials)))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(g.tokens.AccessTokenTTL().Seconds()),
		Scope:       scope,
	}, nil
}
