package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wangov/sso/internal/domain/models"
	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/internal/infrastructure/crypto"
	redisinfra "github.com/wangov/sso/internal/infrastructure/redis"
	"github.com/wangov/sso/pkg/constants"
	"github.com/wangov/sso/pkg/logger"
)

const (
	testIssuer   = "https://sso.gov.example"
	testLoginURL = "https://sso.gov.example/login"
)

type fakeClientRepo struct {
	clients map[string]*models.Client
}

func (r *fakeClientRepo) FindByClientID(_ context.Context, clientID string) (*models.Client, error) {
	return r.clients[clientID], nil
}

type fakeSubjectRepo struct {
	subjects map[string]*models.Subject
}

func (r *fakeSubjectRepo) FindByID(_ context.Context, id string) (*models.Subject, error) {
	return r.subjects[id], nil
}

type fakeAccessRepo struct {
	mu    sync.Mutex
	saved []*models.ServiceAccess
}

func (r *fakeAccessRepo) Save(_ context.Context, access *models.ServiceAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, access)
	return nil
}

func (r *fakeAccessRepo) FindBySubject(_ context.Context, subjectID string) ([]*models.ServiceAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ServiceAccess
	for _, a := range r.saved {
		if a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccessRepo) Revoke(_ context.Context, _ string) error { return nil }

func (r *fakeAccessRepo) DeleteExpiredBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (a *fakeAudit) Record(_ context.Context, event *models.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *fakeAudit) byAction(action constants.AuditEventType) []*models.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.AuditEvent
	for _, e := range a.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires the application services over miniredis-backed stores and a
// real signing key, with in-memory repositories.
type fixture struct {
	authorize AuthorizeAppService
	tokens    TokenAppService
	tokenSvc  domainsvc.TokenService
	grants    domainsvc.GrantStore
	pending   domainsvc.PendingAuthStore
	access    *fakeAccessRepo
	audit     *fakeAudit
	redis     *miniredis.Miniredis
}

func quietLogger() logger.Logger {
	return logger.NewLogger(constants.LogLevelFatal, io.Discard)
}

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	keys, err := crypto.NewKeyManager("test-key", "")
	require.NoError(t, err)

	log := quietLogger()

	clientRepo := &fakeClientRepo{clients: map[string]*models.Client{
		"svc-acme": {
			ID:             "svc-acme",
			OrganizationID: "org-acme",
			Name:           "Acme Portal",
			SecretHash:     mustHash(t, "acme-secret"),
			RedirectURI:    "https://acme.example.com/callback",
			AllowedScopes:  []string{"openid", "profile", "email"},
			Status:         models.ClientStatusActive,
		},
		"svc-other": {
			ID:            "svc-other",
			Name:          "Other Service",
			SecretHash:    mustHash(t, "other-secret"),
			RedirectURI:   "https://other.example.com/cb",
			AllowedScopes: []string{"openid"},
			Status:        models.ClientStatusActive,
		},
	}}
	subjectRepo := &fakeSubjectRepo{subjects: map[string]*models.Subject{
		"subj-1": {
			ID:        "subj-1",
			NID:       "SL-1990-000123",
			FirstName: "Aminata",
			LastName:  "Kamara",
			Email:     "aminata@example.com",
		},
	}}
	accessRepo := &fakeAccessRepo{}
	auditSvc := &fakeAudit{}

	grants := redisinfra.NewGrantStore(redisClient)
	pending := redisinfra.NewPendingAuthStore(redisClient)
	denylist := redisinfra.NewTokenDenylist(redisClient)

	registry := domainsvc.NewClientRegistry(clientRepo, log)
	tokenSvc := domainsvc.NewTokenService(
		crypto.NewJWTManager(keys, log), denylist,
		testIssuer, time.Hour, 720*time.Hour, log,
	)

	return &fixture{
		authorize: NewAuthorizeAppService(
			registry, pending, grants, subjectRepo, auditSvc,
			testLoginURL, constants.AuthorizationCodeTTL, log,
		),
		tokens: NewTokenAppService(
			registry, tokenSvc, grants, denylist,
			subjectRepo, accessRepo, auditSvc, log,
		),
		tokenSvc: tokenSvc,
		grants:   grants,
		pending:  pending,
		access:   accessRepo,
		audit:    auditSvc,
		redis:    mr,
	}
}

// issueCode stores an authorization grant directly, bypassing the
// interactive flow.
func (f *fixture) issueCode(t *testing.T, code, subjectID, clientID, redirectURI, scope, nonce string, ttl time.Duration) {
	t.Helper()
	grant := models.NewAuthorizationGrant(code, subjectID, clientID, redirectURI, scope, nonce, "org-acme", ttl)
	require.NoError(t, f.grants.Put(context.Background(), grant))
}
