package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/internal/application/service"
	"github.com/wangov/sso/internal/infrastructure/monitoring"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

// TokenHandler serves the token endpoint and its companion validation and
// revocation operations.
type TokenHandler struct {
	tokens  service.TokenAppService
	metrics *monitoring.Metrics
	log     logger.Logger
}

// NewTokenHandler creates a TokenHandler.
func NewTokenHandler(tokens service.TokenAppService, metrics *monitoring.Metrics, log logger.Logger) *TokenHandler {
	return &TokenHandler{
		tokens:  tokens,
		metrics: metrics,
		log:     log.WithComponent("token_handler"),
	}
}

// Exchange handles POST /token. Both application/x-www-form-urlencoded and
// JSON bodies are accepted; client credentials may also arrive via HTTP
// Basic authentication.
func (h *TokenHandler) Exchange(c *gin.Context) {
	start := time.Now()

	var req dto.TokenRequest
	if err := bindTokenRequest(c, &req); err != nil {
		h.metrics.RecordTokenRequest("unknown", "invalid_request", time.Since(start))
		dto.SendError(c, err)
		return
	}

	if basicID, basicSecret, ok := c.Request.BasicAuth(); ok {
		req.ClientID = basicID
		req.ClientSecret = basicSecret
	}

	info := dto.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	resp, err := h.tokens.Exchange(c.Request.Context(), &req, info)
	if err != nil {
		h.metrics.RecordTokenRequest(req.GrantType, "error", time.Since(start))
		if errors.ShouldLogError(err) {
			h.log.Error(c.Request.Context(), "token exchange failed", err,
				logger.String("grant_type", req.GrantType))
		}
		dto.SendError(c, err)
		return
	}

	h.metrics.RecordTokenRequest(req.GrantType, "success", time.Since(start))
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, resp)
}

// Validate handles GET /token/validate. The token arrives as a Bearer
// credential; the response is always 200 with an RFC 7662 body, so callers
// can distinguish "inactive" from "endpoint broken".
func (h *TokenHandler) Validate(c *gin.Context) {
	token := bearerToken(c)
	c.JSON(http.StatusOK, h.tokens.Introspect(c.Request.Context(), token))
}

// Revoke handles POST /token/revoke. The client authenticates with HTTP
// Basic credentials; the token travels in the form body.
func (h *TokenHandler) Revoke(c *gin.Context) {
	clientID, clientSecret, ok := c.Request.BasicAuth()
	if !ok {
		dto.SendError(c, errors.ErrInvalidClient("missing client credentials"))
		return
	}

	var req dto.RevokeRequest
	if err := c.ShouldBind(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("malformed request body").WithCause(err))
		return
	}

	info := dto.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if err := h.tokens.Revoke(c.Request.Context(), clientID, clientSecret, req.Token, info); err != nil {
		dto.SendError(c, err)
		return
	}

	h.metrics.RecordTokenRevocation()
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func bindTokenRequest(c *gin.Context, req *dto.TokenRequest) error {
	contentType := c.ContentType()
	var err error
	if strings.Contains(contentType, "application/json") {
		err = c.ShouldBindJSON(req)
	} else {
		err = c.ShouldBind(req)
	}
	if err != nil {
		return errors.ErrInvalidRequest("malformed request body").WithCause(err)
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
