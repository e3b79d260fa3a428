package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
)

func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation, apperr.KindInvalidState:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"error": msg}. Internal failures are logged and reported
// without detail.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	status := StatusOf(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "rid", c.GetString(ctxRequestID), "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// abort stops the chain with a client error; it never carries an internal failure.
func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(StatusOf(err.Kind), gin.H{"error": apperr.Message(err)})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
