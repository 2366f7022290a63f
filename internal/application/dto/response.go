package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/wangov/sso/pkg/errors"
)

// SendError writes an OAuth 2.0 error response body with the status carried
// by the error. Unclassified errors collapse to server_error.
func SendError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatusOf(err), errors.ToErrorResponse(err))
}
