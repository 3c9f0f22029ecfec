package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-auth/internal/service"
)

// respondOK escribe el resultado exitoso con la forma {"ok": true, ...}.
func respondOK(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["ok"] = true
	c.JSON(status, body)
}

// respondError escribe {"ok": false, "kind", "message"}; los DependencyFailure solo llevan un mensaje generico.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	kind := service.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
	}
	c.JSON(status, gin.H{
		"ok":      false,
		"kind":    kind,
		"message": service.PublicMessage(err),
	})
}

func respondInvalidBody(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"ok":      false,
		"kind":    service.KindValidation,
		"message": "Invalid request body",
	})
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindOtpNotFound, service.KindOtpExpired, service.KindInvalidOtp:
		return http.StatusBadRequest
	case service.KindDuplicateAccount, service.KindAlreadyVerified:
		return http.StatusConflict
	case service.KindAccountNotFound:
		return http.StatusNotFound
	case service.KindInvalidCredentials, service.KindInvalidToken:
		return http.StatusUnauthorized
	case service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
