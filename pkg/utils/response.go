package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.JSON(statusCode, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, errCode int, reason, format string, args ...interface{}) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	c.JSON(utils.GetHTTPStatusCode(errCode), Response{
		Code:    errCode,
		Reason:  reason,
		Message: message,
	})
}

// AbortWithError writes the envelope for err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}

// HandleError translates an engine error into the uniform envelope.
func HandleError(c *gin.Context, err error) {
	if appErr, ok := utils.AsError(err); ok {
		Error(c, appErr.Code, appErr.Reason, "%s", appErr.Message)
		return
	}
	if utils.IsNotFound(err) {
		Error(c, utils.ErrCodeNotFound, utils.ReasonNotFound, "resource not found")
		return
	}
	if errors.Is(err, tenancy.ErrContextMissing) {
		Error(c, utils.ErrCodeUnauthorized, utils.ReasonTenantContextRequired, "tenant context required")
		return
	}
	_ = c.Error(err)
	Error(c, utils.ErrCodeInternalError, utils.ReasonInternal, "%s", http.StatusText(http.StatusInternalServerError))
}
