// Package service contains the application services orchestrating the
// authorization and token flows across domain services and stores.
package service

import (
	"context"
	"net/url"
	"time"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/internal/domain/models"
	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
	"github.com/wangov/sso/pkg/utils"
)

// AuthorizeAppService drives the interactive authorization sequence. The
// sequence is split in two because authentication happens out of band in the
// login UI: Begin validates the request and parks it, Complete turns the
// authenticated result into a one-shot authorization code.
type AuthorizeAppService interface {
	// BeginAuthorization validates an incoming authorization request,
	// persists it as pending, and returns the login URL to redirect the
	// user to. Redirect URI failures are returned as errors and must be
	// rendered directly, never redirected.
	BeginAuthorization(ctx context.Context, req *dto.AuthorizeRequest) (string, error)

	// CompleteAuthorization consumes a pending request after the login UI
	// has authenticated the subject, issues the authorization code, and
	// returns the client redirect URL carrying code and state.
	CompleteAuthorization(ctx context.Context, requestID, subjectID string, info dto.RequestInfo) (string, error)
}

type authorizeAppService struct {
	clients  domainsvc.ClientRegistry
	pending  domainsvc.PendingAuthStore
	grants   domainsvc.GrantStore
	subjects subjectFinder
	audit    domainsvc.AuditService
	log      logger.Logger
	loginURL string
	codeTTL  time.Duration
}

// subjectFinder is the slice of SubjectRepository this service needs.
type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// NewAuthorizeAppService wires the authorization flow.
func NewAuthorizeAppService(
	clients domainsvc.ClientRegistry,
	pending domainsvc.PendingAuthStore,
	grants domainsvc.GrantStore,
	subjects subjectFinder,
	audit domainsvc.AuditService,
	loginURL string,
	codeTTL time.Duration,
	log logger.Logger,
) AuthorizeAppService {
	if codeTTL <= 0 {
		codeTTL = constants.AuthorizationCodeTTL
	}
	return &authorizeAppService{
		clients:  clients,
		pending:  pending,
		grants:   grants,
		subjects: subjects,
		audit:    audit,
		log:      log.WithComponent("authorize_service"),
		loginURL: loginURL,
		codeTTL:  codeTTL,
	}
}

func (s *authorizeAppService) BeginAuthorization(ctx context.Context, req *dto.AuthorizeRequest) (string, error) {
	state := models.StateReceivedRequest

	if err := validateAuthorizeParams(req); err != nil {
		return "", err
	}
	state = advance(state, models.StateParametersValidated)

	// Client and redirect checks run before anything is stored. A redirect
	// mismatch renders an error page; the unverified URI is never a target.
	client, err := s.clients.ValidateClient(ctx, req.ClientID, "")
	if err != nil {
		return "", err
	}
	if err := s.clients.ValidateRedirectURI(client, req.RedirectURI); err != nil {
		return "", err
	}

	for _, scope := range utils.ParseScope(req.Scope) {
		if !client.AllowsScope(scope) {
			return "", errors.ErrInvalidScope("scope not registered for client").
				WithMetadata("client_id", client.ID).
				WithMetadata("scope", scope)
		}
	}

	requestID, err := utils.GenerateOpaqueID()
	if err != nil {
		return "", errors.ErrServerError("request id generation failed").WithCause(err)
	}

	now := time.Now().UTC()
	pending := &models.PendingAuthorization{
		RequestID:      requestID,
		ClientID:       client.ID,
		RedirectURI:    req.RedirectURI,
		ResponseType:   req.ResponseType,
		Scope:          req.Scope,
		State:          req.State,
		Nonce:          req.Nonce,
		OrganizationID: client.OrganizationID,
		AuthState:      advance(state, models.StateAwaitingUserAuthentication),
		CreatedAt:      now,
		ExpiresAt:      now.Add(constants.PendingAuthTTL),
	}
	if err := s.pending.Save(ctx, pending); err != nil {
		return "", errors.ErrServerError("failed to persist authorization request").WithCause(err)
	}

	s.log.Info(ctx, "authorization request accepted",
		logger.String("client_id", client.ID),
		logger.String("request_id", requestID))

	login, err := url.Parse(s.loginURL)
	if err != nil {
		return "", errors.ErrServerError("login URL misconfigured").WithCause(err)
	}
	q := login.Query()
	q.Set("request_id", requestID)
	login.RawQuery = q.Encode()
	return login.String(), nil
}

func (s *authorizeAppService) CompleteAuthorization(ctx context.Context, requestID, subjectID string, info dto.RequestInfo) (string, error) {
	if requestID == "" {
		return "", errors.ErrMissingParameter("request_id")
	}
	if subjectID == "" {
		return "", errors.ErrMissingParameter("subject_id")
	}

	pending, err := s.pending.Consume(ctx, requestID)
	if err != nil {
		return "", errors.ErrServerError("pending authorization lookup failed").WithCause(err)
	}
	if pending == nil || pending.IsExpired() {
		return "", errors.ErrInvalidRequest("unknown or expired authorization request").
			WithMetadata("request_id", requestID)
	}

	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		return "", errors.ErrServerError("subject lookup failed").WithCause(err)
	}
	if subject == nil {
		return "", errors.ErrAccessDenied("unknown subject").
			WithMetadata("request_id", requestID)
	}
	authState := advance(pending.AuthState, models.StateAuthenticated)

	code, err := utils.GenerateAuthorizationCode()
	if err != nil {
		return "", errors.ErrServerError("code generation failed").WithCause(err)
	}

	grant := models.NewAuthorizationGrant(
		code, subject.ID, pending.ClientID, pending.RedirectURI,
		pending.Scope, pending.Nonce, pending.OrganizationID, s.codeTTL,
	)
	if err := s.grants.Put(ctx, grant); err != nil {
		return "", errors.ErrServerError("failed to persist authorization grant").WithCause(err)
	}
	authState = advance(authState, models.StateGrantIssued)

	s.audit.Record(ctx, models.NewAuditEvent(
		constants.AuditEventAuthorizationGranted, "client", pending.ClientID, subject.ID,
	).WithRequestInfo(info.IP, info.UserAgent).WithMetadata("scope", pending.Scope))

	redirect, err := url.Parse(pending.RedirectURI)
	if err != nil {
		// Registration guarantees a parseable URI; treat a failure as corrupt state.
		return "", errors.ErrServerError("stored redirect URI unparseable").WithCause(err)
	}
	q := redirect.Query()
	q.Set("code", code)
	if pending.State != "" {
		q.Set("state", pending.State)
	}
	redirect.RawQuery = q.Encode()

	_ = advance(authState, models.StateRedirectedToClient)

	s.log.Info(ctx, "authorization code issued",
		logger.String("client_id", pending.ClientID),
		logger.String("subject_id", subject.ID))
	return redirect.String(), nil
}

func validateAuthorizeParams(req *dto.AuthorizeRequest) error {
	switch {
	case req.ClientID == "":
		return errors.ErrMissingParameter("client_id")
	case req.RedirectURI == "":
		return errors.ErrMissingParameter("redirect_uri")
	case req.ResponseType == "":
		return errors.ErrMissingParameter("response_type")
	case req.Scope == "":
		return errors.ErrMissingParameter("scope")
	}
	if constants.ResponseType(req.ResponseType) != constants.ResponseTypeCode {
		return errors.ErrUnsupportedResponseType(req.ResponseType)
	}
	return nil
}

// advance asserts a legal state transition. Transitions are driven by code
// paths that already enforce ordering, so a violation is a programming error.
func advance(from, to models.AuthorizationState) models.AuthorizationState {
	if !from.CanTransitionTo(to) {
		panic("illegal authorization state transition: " + string(from) + " -> " + string(to))
	}
	return to
}
