// Package handlers maps HTTP requests onto the application services.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wangov/sso/internal/application/dto"
	"github.com/wangov/sso/internal/application/service"
	"github.com/wangov/sso/internal/infrastructure/monitoring"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

// AuthorizeHandler serves the interactive authorization endpoints.
type AuthorizeHandler struct {
	authorize service.AuthorizeAppService
	metrics   *monitoring.Metrics
	log       logger.Logger
}

// NewAuthorizeHandler creates an AuthorizeHandler.
func NewAuthorizeHandler(authorize service.AuthorizeAppService, metrics *monitoring.Metrics, log logger.Logger) *AuthorizeHandler {
	return &AuthorizeHandler{
		authorize: authorize,
		metrics:   metrics,
		log:       log.WithComponent("authorize_handler"),
	}
}

// Begin handles GET /authorize. On success the user agent is redirected to
// the login UI. Every failure renders a direct error response; the
// redirect_uri is never used as an error target because it is unverified
// until validation succeeds.
func (h *AuthorizeHandler) Begin(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.metrics.RecordAuthorization("invalid_request")
		dto.SendError(c, errors.ErrInvalidRequest("malformed query parameters").WithCause(err))
		return
	}

	loginURL, err := h.authorize.BeginAuthorization(c.Request.Context(), &req)
	if err != nil {
		h.metrics.RecordAuthorization("rejected")
		dto.SendError(c, err)
		return
	}

	h.metrics.RecordAuthorization("accepted")
	c.Redirect(http.StatusFound, loginURL)
}

// Complete handles POST /authorize/complete, called by the login UI once
// the user has authenticated. It redirects the user agent back to the
// client callback carrying the authorization code and state.
func (h *AuthorizeHandler) Complete(c *gin.Context) {
	var req dto.CompleteAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("malformed request body").WithCause(err))
		return
	}

	info := dto.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	redirectURL, err := h.authorize.CompleteAuthorization(c.Request.Context(), req.RequestID, req.SubjectID, info)
	if err != nil {
		dto.SendError(c, err)
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}
